package analytics

import (
	"fmt"
	"time"
)

// Timeframe selects the reporting window and its bucketing granularity.
type Timeframe string

const (
	TimeframeDaily       Timeframe = "daily"
	TimeframeWeekly      Timeframe = "weekly"
	TimeframeMonthly     Timeframe = "monthly"
	TimeframeLast3Months Timeframe = "last3months"
	TimeframeLast6Months Timeframe = "last6months"
	TimeframeYearly      Timeframe = "yearly"
)

var validTimeframes = []Timeframe{
	TimeframeDaily,
	TimeframeWeekly,
	TimeframeMonthly,
	TimeframeLast3Months,
	TimeframeLast6Months,
	TimeframeYearly,
}

// IsValid reports whether the value is a known Timeframe.
func (t Timeframe) IsValid() bool {
	for _, candidate := range validTimeframes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTimeframe converts raw input into a Timeframe.
func ParseTimeframe(value string) (Timeframe, error) {
	for _, candidate := range validTimeframes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid timeframe %q", value)
}

// Span is one bucket interval. Start and End are inclusive and expressed
// in local calendar time.
type Span struct {
	Label string
	Start time.Time
	End   time.Time
}

// StartOfWeek returns local midnight of the Monday of t's week. Every
// week-based computation in the application (week buckets, backup
// periods) shares this convention.
func StartOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Spans lays out the dense bucket grid for a timeframe as observed at
// now. Buckets appear whether or not any sale falls inside them.
func Spans(now time.Time, tf Timeframe) []Span {
	switch tf {
	case TimeframeDaily:
		// Fixed 24 hourly buckets over the current day.
		day := startOfDay(now)
		spans := make([]Span, 0, 24)
		for h := 0; h < 24; h++ {
			start := day.Add(time.Duration(h) * time.Hour)
			spans = append(spans, Span{
				Label: start.Format("15:00"),
				Start: start,
				End:   start.Add(time.Hour - time.Nanosecond),
			})
		}
		return spans

	case TimeframeWeekly:
		// The last 7 calendar days ending today.
		spans := make([]Span, 0, 7)
		for d := 6; d >= 0; d-- {
			day := startOfDay(now).AddDate(0, 0, -d)
			spans = append(spans, Span{
				Label: day.Format("2006-01-02"),
				Start: day,
				End:   endOfDay(day),
			})
		}
		return spans

	case TimeframeMonthly:
		// Every day from the 1st of the current month through today.
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		var spans []Span
		for day := first; !day.After(now); day = day.AddDate(0, 0, 1) {
			spans = append(spans, Span{
				Label: day.Format("2006-01-02"),
				Start: day,
				End:   endOfDay(day),
			})
		}
		return spans

	case TimeframeLast3Months, TimeframeLast6Months:
		days := 90
		if tf == TimeframeLast6Months {
			days = 180
		}
		// Calendar weeks covering the trailing window, final week clipped
		// to today.
		start := StartOfWeek(now.AddDate(0, 0, -(days - 1)))
		var spans []Span
		for week := start; !week.After(now); week = week.AddDate(0, 0, 7) {
			end := week.AddDate(0, 0, 7).Add(-time.Nanosecond)
			if end.After(now) {
				end = endOfDay(now)
			}
			spans = append(spans, Span{
				Label: week.Format("2006-01-02"),
				Start: week,
				End:   end,
			})
		}
		return spans

	case TimeframeYearly:
		// January through the current month, final month clipped to today.
		var spans []Span
		for m := time.January; m <= now.Month(); m++ {
			start := time.Date(now.Year(), m, 1, 0, 0, 0, 0, now.Location())
			end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
			if end.After(now) {
				end = endOfDay(now)
			}
			spans = append(spans, Span{
				Label: start.Format("2006-01"),
				Start: start,
				End:   end,
			})
		}
		return spans
	}
	return nil
}

// Interval returns the full inclusive range covered by a timeframe's
// buckets. Used by the ranking path, which aggregates the whole window
// without sub-bucketing.
func Interval(now time.Time, tf Timeframe) (time.Time, time.Time) {
	spans := Spans(now, tf)
	if len(spans) == 0 {
		return time.Time{}, time.Time{}
	}
	return spans[0].Start, spans[len(spans)-1].End
}
