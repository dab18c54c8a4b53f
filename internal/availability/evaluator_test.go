package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthworks/volunteer-api/internal/models"
)

var testZone = time.FixedZone("TEST", 7*3600)

func window(weekday int, start, end string) models.AvailabilityWindow {
	return models.AvailabilityWindow{Weekday: weekday, StartTime: start, EndTime: end}
}

func weekdayBlackout(weekday int, start, end string) models.Blackout {
	return models.Blackout{Weekday: &weekday, StartTime: start, EndTime: end}
}

func dateBlackout(date time.Time, start, end string) models.Blackout {
	return models.Blackout{Date: &date, StartTime: start, EndTime: end}
}

// 2024-01-08 was a Monday.
func localTime(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, testZone)
}

func TestAvailableOnWeekdayDefaultAvailable(t *testing.T) {
	// no windows at all: available on every weekday
	for wd := 0; wd <= 6; wd++ {
		assert.True(t, AvailableOnWeekday(wd, "09:00", "17:00", nil, nil))
	}
}

func TestAvailableOnWeekdayWindowsAreORed(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "08:00", "10:00"),
		window(1, "14:00", "18:00"),
	}
	assert.True(t, AvailableOnWeekday(1, "15:00", "16:00", windows, nil))
	assert.True(t, AvailableOnWeekday(1, "09:00", "09:30", windows, nil))
	assert.False(t, AvailableOnWeekday(1, "11:00", "13:00", windows, nil))
	assert.False(t, AvailableOnWeekday(2, "15:00", "16:00", windows, nil))
}

func TestAvailableOnWeekdayBlackoutDeniesDespiteDefault(t *testing.T) {
	blackouts := []models.Blackout{weekdayBlackout(0, "00:00", "23:59")}
	assert.False(t, AvailableOnWeekday(0, "09:00", "11:00", nil, blackouts))
	assert.True(t, AvailableOnWeekday(1, "09:00", "11:00", nil, blackouts))
}

func TestAvailableForRangeSameDay(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "08:00", "16:00")}

	ok := AvailableForRange(localTime(8, 9, 0), localTime(8, 11, 0), testZone, windows, nil)
	assert.True(t, ok)

	ok = AvailableForRange(localTime(8, 18, 0), localTime(8, 20, 0), testZone, windows, nil)
	assert.False(t, ok)
}

func TestAvailableForRangeCrossMidnightSegmentOR(t *testing.T) {
	// Available only Tuesday 22:00-23:59. A shift running Tuesday 22:30
	// into Wednesday 00:30 counts via the first segment.
	windows := []models.AvailabilityWindow{window(2, "22:00", "23:59")}

	start := localTime(9, 22, 30)
	end := localTime(10, 0, 30)
	assert.True(t, AvailableForRange(start, end, testZone, windows, nil))

	// Entirely Wednesday with no Wednesday window.
	assert.False(t, AvailableForRange(localTime(10, 1, 0), localTime(10, 3, 0), testZone, windows, nil))
}

func TestAvailableForRangeDateBlackoutOverridesWindow(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "08:00", "16:00")}
	blackouts := []models.Blackout{dateBlackout(localTime(8, 0, 0), "00:00", "23:59")}

	assert.False(t, AvailableForRange(localTime(8, 9, 0), localTime(8, 11, 0), testZone, windows, blackouts))

	// The following Monday is unaffected.
	assert.True(t, AvailableForRange(localTime(15, 9, 0), localTime(15, 11, 0), testZone, windows, blackouts))
}

func TestAvailableForRangeCrossMidnightDateBlackoutOnEitherBoundary(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(2, "20:00", "23:59"),
		window(3, "00:00", "04:00"),
	}
	start := localTime(9, 22, 0)
	end := localTime(10, 1, 0)

	require.True(t, AvailableForRange(start, end, testZone, windows, nil))

	// Blacked out on the end date's early hours: the whole range is denied
	// even though the first segment alone would pass.
	blackouts := []models.Blackout{dateBlackout(localTime(10, 0, 0), "00:00", "02:00")}
	assert.False(t, AvailableForRange(start, end, testZone, windows, blackouts))
}

func TestMondayScenario(t *testing.T) {
	// Weekday-1 window 08:00-16:00 plus a weekday-1 blackout 00:00-15:59.
	windows := []models.AvailabilityWindow{window(1, "08:00", "16:00")}
	blackouts := []models.Blackout{weekdayBlackout(1, "00:00", "15:59")}

	// Morning shift: window matches but the blackout wins.
	assert.False(t, AvailableForRange(localTime(8, 9, 0), localTime(8, 11, 0), testZone, windows, blackouts))

	// 16:00-18:00 shift: overlap endpoints are inclusive, so the shared
	// 16:00 minute still satisfies the window, and the blackout stops at
	// 15:59. The boundary policy is deliberate; see Overlaps.
	assert.True(t, AvailableForRange(localTime(8, 16, 0), localTime(8, 18, 0), testZone, windows, blackouts))

	// 17:00-19:00 without the boundary touch fails the window outright.
	blackoutFree := AvailableForRange(localTime(8, 17, 0), localTime(8, 19, 0), testZone, windows, nil)
	assert.False(t, blackoutFree)
}

func TestAvailableForRangeUTCUsesUTCFields(t *testing.T) {
	// 02:00 local Tuesday in UTC+7 is 19:00 UTC Monday.
	windows := []models.AvailabilityWindow{window(1, "18:00", "22:00")}
	start := localTime(9, 2, 0)
	end := localTime(9, 4, 0)

	assert.False(t, AvailableForRange(start, end, testZone, windows, nil))
	assert.True(t, AvailableForRangeUTC(start, end, windows, nil))
}

func TestDebugForRangeReasonPriority(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "08:00", "16:00")}

	// Date blackout outranks everything else.
	res := DebugForRange(localTime(8, 9, 0), localTime(8, 11, 0), testZone, windows,
		[]models.Blackout{dateBlackout(localTime(8, 0, 0), "00:00", "23:59"), weekdayBlackout(1, "00:00", "23:59")})
	require.False(t, res.OK)
	assert.Equal(t, []string{ReasonBlackoutDate}, res.Reasons)

	// No window overlap.
	res = DebugForRange(localTime(8, 18, 0), localTime(8, 20, 0), testZone, windows, nil)
	require.False(t, res.OK)
	assert.Equal(t, []string{ReasonOutsideAvailability}, res.Reasons)
	assert.False(t, res.Context.LocalOverlap)
	assert.Len(t, res.Context.WindowsLocal, 1)

	// Weekday blackout fires last.
	res = DebugForRange(localTime(8, 9, 0), localTime(8, 11, 0), testZone, windows,
		[]models.Blackout{weekdayBlackout(1, "00:00", "15:59")})
	require.False(t, res.OK)
	assert.Equal(t, []string{ReasonBlackoutWeekday}, res.Reasons)
}

func TestDebugForRangeContextCarriesBothClocks(t *testing.T) {
	res := DebugForRange(localTime(8, 9, 0), localTime(8, 11, 0), testZone, nil, nil)
	require.True(t, res.OK)
	assert.Empty(t, res.Reasons)
	assert.Equal(t, 1, res.Context.Weekday)
	assert.Equal(t, "09:00", res.Context.StartTime)
	assert.Equal(t, "02:00", res.Context.StartTimeUTC)
	assert.Equal(t, "2024-01-08", res.Context.StartDate)
	assert.True(t, res.Context.LocalOverlap)
}
