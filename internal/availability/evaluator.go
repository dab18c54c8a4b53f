package availability

import (
	"fmt"
	"time"

	"github.com/hearthworks/volunteer-api/internal/models"
)

// AvailableOnWeekday decides whether the requested weekday time range is
// permitted by the volunteer's recurring rules. A volunteer with no windows
// at all is available by default; weekday-scoped blackouts still deny.
func AvailableOnWeekday(weekday int, startTime, endTime string, windows []models.AvailabilityWindow, blackouts []models.Blackout) bool {
	availMatch := true
	if len(windows) > 0 {
		availMatch = false
		for _, w := range windows {
			if w.Weekday == weekday && Overlaps(startTime, endTime, w.StartTime, w.EndTime) {
				availMatch = true
				break
			}
		}
	}
	if !availMatch {
		return false
	}

	for _, b := range blackouts {
		if !b.IsWeekdayScoped() || *b.Weekday != weekday {
			continue
		}
		if Overlaps(startTime, endTime, b.StartTime, b.EndTime) {
			return false
		}
	}
	return true
}

// AvailableForRange decides whether the absolute interval [start, end] is
// permitted under local wall-clock semantics in loc. A range crossing a
// local calendar date boundary is split into two segments; being available
// for either segment counts (a volunteer who can work part of an overnight
// shift is a candidate for it). Date-scoped blackouts are checked against
// their boundary date's segment and always deny on overlap.
func AvailableForRange(start, end time.Time, loc *time.Location, windows []models.AvailabilityWindow, blackouts []models.Blackout) bool {
	if loc == nil {
		loc = time.Local
	}
	localStart := start.In(loc)
	localEnd := end.In(loc)

	startTime := hhmm(localStart)
	endTime := hhmm(localEnd)
	startYMD := ymd(localStart)
	endYMD := ymd(localEnd)

	if startYMD == endYMD {
		if dateBlackoutOverlaps(blackouts, loc, startYMD, startTime, endTime) {
			return false
		}
		return AvailableOnWeekday(int(localStart.Weekday()), startTime, endTime, windows, blackouts)
	}

	// Crossing midnight: segment 1 runs to 23:59 on the start date,
	// segment 2 from 00:00 on the end date.
	if dateBlackoutOverlaps(blackouts, loc, startYMD, startTime, "23:59") {
		return false
	}
	if dateBlackoutOverlaps(blackouts, loc, endYMD, "00:00", endTime) {
		return false
	}

	availSeg1 := AvailableOnWeekday(int(localStart.Weekday()), startTime, "23:59", windows, blackouts)
	availSeg2 := AvailableOnWeekday(int(localEnd.Weekday()), "00:00", endTime, windows, blackouts)
	return availSeg1 || availSeg2
}

// AvailableForRangeUTC is the legacy check for rows entered under the old
// UTC interpretation. It mirrors the same-day branch of AvailableForRange
// using UTC weekday and time-of-day. Callers use it only to additionally
// permit after the local check fails, never to deny.
func AvailableForRangeUTC(start, end time.Time, windows []models.AvailabilityWindow, blackouts []models.Blackout) bool {
	utcStart := start.UTC()
	utcEnd := end.UTC()

	startTime := hhmm(utcStart)
	endTime := hhmm(utcEnd)
	startYMD := ymd(utcStart)

	for _, b := range blackouts {
		if !b.IsDateScoped() {
			continue
		}
		if ymd(b.Date.UTC()) == startYMD && Overlaps(startTime, endTime, b.StartTime, b.EndTime) {
			return false
		}
	}

	return AvailableOnWeekday(int(utcStart.Weekday()), startTime, endTime, windows, blackouts)
}

func dateBlackoutOverlaps(blackouts []models.Blackout, loc *time.Location, dateYMD, startTime, endTime string) bool {
	for _, b := range blackouts {
		if !b.IsDateScoped() {
			continue
		}
		if ymd(b.Date.In(loc)) == dateYMD && Overlaps(startTime, endTime, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

func hhmm(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func ymd(t time.Time) string {
	return t.Format("2006-01-02")
}
