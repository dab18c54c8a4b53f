package availability

import (
	"time"

	"github.com/hearthworks/volunteer-api/internal/models"
)

// Reason codes in priority order: a date-scoped blackout beats a missing
// window, which beats a weekday-scoped blackout.
const (
	ReasonBlackoutDate        = "blackout_date"
	ReasonOutsideAvailability = "outside_availability"
	ReasonBlackoutWeekday     = "blackout_weekday"
)

// Context carries the intermediate values behind a debug decision. Both
// local and UTC renderings are included so timezone misconfiguration is
// visible at a glance.
type Context struct {
	Weekday      int                         `json:"weekday"`
	UTCWeekday   int                         `json:"utcWeekday"`
	StartTime    string                      `json:"startTime"`
	EndTime      string                      `json:"endTime"`
	StartTimeUTC string                      `json:"startTimeUtc"`
	EndTimeUTC   string                      `json:"endTimeUtc"`
	StartDate    string                      `json:"startDate"`
	EndDate      string                      `json:"endDate"`
	LocalOverlap bool                        `json:"localOverlap"`
	UTCOverlap   bool                        `json:"utcOverlap"`
	WindowsLocal []models.AvailabilityWindow `json:"windowsLocal,omitempty"`
	WindowsUTC   []models.AvailabilityWindow `json:"windowsUtc,omitempty"`
}

// Result is the structured outcome of a debug availability check.
type Result struct {
	OK      bool     `json:"ok"`
	Reasons []string `json:"reasons"`
	Context Context  `json:"context"`
}

// DebugForRange applies the same decision logic as AvailableForRange but
// reports which rule fired and the computed intermediates.
func DebugForRange(start, end time.Time, loc *time.Location, windows []models.AvailabilityWindow, blackouts []models.Blackout) Result {
	if loc == nil {
		loc = time.Local
	}
	localStart := start.In(loc)
	localEnd := end.In(loc)
	utcStart := start.UTC()
	utcEnd := end.UTC()

	ctx := Context{
		Weekday:      int(localStart.Weekday()),
		UTCWeekday:   int(utcStart.Weekday()),
		StartTime:    hhmm(localStart),
		EndTime:      hhmm(localEnd),
		StartTimeUTC: hhmm(utcStart),
		EndTimeUTC:   hhmm(utcEnd),
		StartDate:    ymd(localStart),
		EndDate:      ymd(localEnd),
	}

	if dateBlackoutOverlaps(blackouts, loc, ctx.StartDate, ctx.StartTime, ctx.EndTime) {
		return Result{OK: false, Reasons: []string{ReasonBlackoutDate}, Context: ctx}
	}

	if len(windows) > 0 {
		endWeekday := int(localEnd.Weekday())
		if ctx.StartDate == ctx.EndDate {
			ctx.LocalOverlap = anyWindowOverlap(windows, ctx.Weekday, ctx.StartTime, ctx.EndTime)
		} else {
			seg1 := anyWindowOverlap(windows, ctx.Weekday, ctx.StartTime, "23:59")
			seg2 := anyWindowOverlap(windows, endWeekday, "00:00", ctx.EndTime)
			ctx.LocalOverlap = seg1 || seg2
		}
		ctx.UTCOverlap = anyWindowOverlap(windows, ctx.UTCWeekday, ctx.StartTimeUTC, ctx.EndTimeUTC)

		if !ctx.LocalOverlap {
			ctx.WindowsLocal = windowsForWeekday(windows, ctx.Weekday)
			ctx.WindowsUTC = windowsForWeekday(windows, ctx.UTCWeekday)
			return Result{OK: false, Reasons: []string{ReasonOutsideAvailability}, Context: ctx}
		}
	} else {
		ctx.LocalOverlap = true
	}

	for _, b := range blackouts {
		if b.IsWeekdayScoped() && *b.Weekday == ctx.Weekday && Overlaps(ctx.StartTime, ctx.EndTime, b.StartTime, b.EndTime) {
			return Result{OK: false, Reasons: []string{ReasonBlackoutWeekday}, Context: ctx}
		}
	}

	return Result{OK: true, Reasons: []string{}, Context: ctx}
}

func anyWindowOverlap(windows []models.AvailabilityWindow, weekday int, startTime, endTime string) bool {
	for _, w := range windows {
		if w.Weekday == weekday && Overlaps(startTime, endTime, w.StartTime, w.EndTime) {
			return true
		}
	}
	return false
}

func windowsForWeekday(windows []models.AvailabilityWindow, weekday int) []models.AvailabilityWindow {
	var matched []models.AvailabilityWindow
	for _, w := range windows {
		if w.Weekday == weekday {
			matched = append(matched, w)
		}
	}
	return matched
}
