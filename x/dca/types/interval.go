package types

import (
	"strings"
	"time"

	"cosmossdk.io/errors"
)

// TimeInterval is a recurrence preset or a custom Go duration such as "90m".
type TimeInterval string

const (
	IntervalEveryMinute TimeInterval = "every_minute"
	IntervalHalfHourly  TimeInterval = "half_hourly"
	IntervalHourly      TimeInterval = "hourly"
	IntervalHalfDaily   TimeInterval = "half_daily"
	IntervalDaily       TimeInterval = "daily"
	IntervalWeekly      TimeInterval = "weekly"
	IntervalFortnightly TimeInterval = "fortnightly"
	IntervalMonthly     TimeInterval = "monthly"

	minCustomInterval = time.Minute
)

var presetDurations = map[TimeInterval]time.Duration{
	IntervalEveryMinute: time.Minute,
	IntervalHalfHourly:  30 * time.Minute,
	IntervalHourly:      time.Hour,
	IntervalHalfDaily:   12 * time.Hour,
	IntervalDaily:       24 * time.Hour,
	IntervalWeekly:      7 * 24 * time.Hour,
	IntervalFortnightly: 14 * 24 * time.Hour,
}

func (i TimeInterval) ValidateBasic() error {
	if i == IntervalMonthly {
		return nil
	}
	if _, ok := presetDurations[i]; ok {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(string(i)))
	if err != nil {
		return errors.Wrapf(ErrInvalidRequest, "unknown time interval %q", i)
	}
	if d < minCustomInterval {
		return errors.Wrapf(ErrInvalidRequest, "custom time interval must be at least %s", minCustomInterval)
	}
	return nil
}

// duration returns the fixed length of the interval. Monthly has none.
func (i TimeInterval) duration() (time.Duration, bool) {
	if d, ok := presetDurations[i]; ok {
		return d, true
	}
	if i == IntervalMonthly {
		return 0, false
	}
	d, err := time.ParseDuration(strings.TrimSpace(string(i)))
	if err != nil || d < minCustomInterval {
		return 0, false
	}
	return d, true
}

// Next returns the slot one interval after from.
func (i TimeInterval) Next(from time.Time) time.Time {
	if d, ok := i.duration(); ok {
		return from.Add(d)
	}
	if i == IntervalMonthly {
		return from.AddDate(0, 1, 0)
	}
	return from.Add(24 * time.Hour)
}

// NextTargetTime returns the first slot after now on the grid anchored at
// lastTarget. Missed slots are skipped rather than replayed.
func NextTargetTime(now, lastTarget time.Time, interval TimeInterval) time.Time {
	if d, ok := interval.duration(); ok {
		if now.Before(lastTarget) {
			return lastTarget.Add(d)
		}
		elapsed := now.Sub(lastTarget)
		return lastTarget.Add((elapsed/d + 1) * d)
	}

	next := interval.Next(lastTarget)
	for !next.After(now) {
		next = interval.Next(next)
	}
	return next
}
