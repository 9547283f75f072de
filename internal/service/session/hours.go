package session

import (
	"time"
)

type WindowType string

const (
	WindowQuote WindowType = "quote"
	WindowTrade WindowType = "trade"
)

const day = 24 * time.Hour

// Interval 一天内的交易时段, both bounds inclusive.
type Interval struct {
	Start time.Duration
	End   time.Duration
}

// WeekHours holds the per-weekday trading intervals, already split so
// that no interval crosses a day boundary.
type WeekHours map[time.Weekday][]Interval

// WeekdaySpan is one raw interval from a session-window message,
// ms offsets from local midnight. Offsets may be negative or exceed
// 24h to denote spillover into the adjacent day.
type WeekdaySpan struct {
	Weekday int   `json:"weekday"`
	Start   int64 `json:"start"`
	End     int64 `json:"end"`
}

func weekdayOffset(weekday time.Weekday, offset int) time.Weekday {
	result := int(weekday) + offset
	for result < 0 {
		result += 7
	}
	for result > 6 {
		result -= 7
	}
	return time.Weekday(result)
}

// normalize strips whole days, keeping only the time-of-day component.
func normalize(d time.Duration) time.Duration {
	d = d % day
	if d < 0 {
		d += day
	}
	return d
}

func (h WeekHours) push(weekday time.Weekday, start, end time.Duration) {
	h[weekday] = append(h[weekday], Interval{
		Start: normalize(start),
		End:   normalize(end),
	})
}

// Fill splits an interval that spills over midnight into same-day
// intervals attributed to the adjacent weekday, so runtime lookup
// never crosses a day boundary.
func (h WeekHours) Fill(weekday time.Weekday, start, end time.Duration) {
	// 24:00:00.000 means the next day, the last moment
	// of the current day is 23:59:59.999
	if end == day {
		end -= time.Millisecond
	}

	switch {
	case start < 0 && end < 0:
		h.push(weekdayOffset(weekday, -1), start, end)
	case start > day && end > day:
		h.push(weekdayOffset(weekday, 1), start, end)
	case start < 0:
		h.push(weekdayOffset(weekday, -1), start, day-time.Millisecond)
		h.push(weekday, 0, end)
	case end > day:
		h.push(weekday, start, day-time.Millisecond)
		h.push(weekdayOffset(weekday, 1), 0, end)
	default:
		h.push(weekday, start, end)
	}
}

// ParseHours builds the split week schedule from raw message spans,
// shifting every bound by the broker's GMT offset first.
func ParseHours(spans []WeekdaySpan, gmtOffset time.Duration) WeekHours {
	hours := WeekHours{}
	for _, span := range spans {
		start := time.Duration(span.Start)*time.Millisecond + gmtOffset
		end := time.Duration(span.End)*time.Millisecond + gmtOffset
		hours.Fill(time.Weekday(span.Weekday), start, end)
	}
	return hours
}

// Contains reports whether the time of day falls inside any interval
// configured for the weekday, bounds inclusive.
func (h WeekHours) Contains(weekday time.Weekday, timeOfDay time.Duration) bool {
	for _, iv := range h[weekday] {
		if iv.Start <= timeOfDay && timeOfDay <= iv.End {
			return true
		}
	}
	return false
}
