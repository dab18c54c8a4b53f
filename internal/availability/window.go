package availability

import (
	"strconv"
	"strings"
)

const minutesPerDay = 1440

// minuteOfDay converts an HH:MM clock string to minutes since midnight.
// Malformed input degrades to 0 rather than failing; times come from
// validated rows and HH:MM renderings of time.Time values.
func minuteOfDay(t string) int {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return h*60 + m
}

// Overlaps reports whether two clock-time intervals intersect. An interval
// whose raw end precedes its start is treated as wrapping past midnight and
// normalised onto a linear scale; the second interval is additionally
// checked shifted by one day to catch cross-midnight alignment. Endpoints
// are inclusive: intervals sharing a boundary minute overlap.
func Overlaps(startA, endA, startB, endB string) bool {
	a1, a2 := normalize(minuteOfDay(startA), minuteOfDay(endA))
	b1, b2 := normalize(minuteOfDay(startB), minuteOfDay(endB))

	return intersects(a1, a2, b1, b2) || intersects(a1, a2, b1+minutesPerDay, b2+minutesPerDay)
}

func normalize(start, end int) (int, int) {
	if end >= start {
		return start, end
	}
	return start, end + minutesPerDay
}

func intersects(x1, x2, y1, y2 int) bool {
	return x1 <= y2 && y1 <= x2
}
