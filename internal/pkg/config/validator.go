package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the standard five-field form used by the worker.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule reports whether schedule is a valid five-field cron
// expression ("minute hour day-of-month month day-of-week").
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("cron schedule cannot be empty")
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone reports whether timezone is a loadable IANA name.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return errors.New("timezone cannot be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return nil
}

// ValidateDuration checks min <= d <= max.
func ValidateDuration(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) greater than max (%v)", min, max)
	}
	if d < min {
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	}
	if d > max {
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}
	return nil
}

// ValidateIntRange checks min <= v <= max.
func ValidateIntRange(v, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) greater than max (%d)", min, max)
	}
	if v < min {
		return fmt.Errorf("value %d is below minimum %d", v, min)
	}
	if v > max {
		return fmt.Errorf("value %d exceeds maximum %d", v, max)
	}
	return nil
}

// ValidatePort accepts unprivileged TCP ports.
func ValidatePort(port int) error {
	return ValidateIntRange(port, 1024, 65535)
}

// IntRange adapts ValidateIntRange to a Validator.
func IntRange(min, max int) Validator[int] {
	return func(v int) error { return ValidateIntRange(v, min, max) }
}

// DurationRange adapts ValidateDuration to a Validator.
func DurationRange(min, max time.Duration) Validator[time.Duration] {
	return func(d time.Duration) error { return ValidateDuration(d, min, max) }
}
