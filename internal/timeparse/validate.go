package timeparse

import (
	"fmt"
	"time"
)

const (
	minLead    = 10 * time.Second
	maxHorizon = 365 * 24 * time.Hour
	maxEngine  = 24 * time.Hour
)

// Validate applies the input-level constraints: durations in [10s, 365d],
// absolute instants strictly future with at least 10s lead and within a year,
// daily inputs always accepted (their occurrence is computed lazily).
// The 10s floor is inclusive: exactly ten seconds is accepted.
func (r *Resolver) Validate(in TimeInput, now time.Time) error {
	switch in.Kind {
	case KindDuration:
		if in.Span <= 0 {
			return fmt.Errorf("%w: duration must be positive", ErrOutOfRange)
		}
		if in.Span < minLead {
			return fmt.Errorf("%w: duration must be at least %s", ErrOutOfRange, minLead)
		}
		if in.Span > maxHorizon {
			return fmt.Errorf("%w: duration exceeds 365 days", ErrOutOfRange)
		}
	case KindAbsolute:
		if !in.At.After(now) {
			return fmt.Errorf("%w: target time is not in the future", ErrOutOfRange)
		}
		if in.At.Sub(now) > maxHorizon {
			return fmt.Errorf("%w: target time exceeds 365 days ahead", ErrOutOfRange)
		}
		if in.At.Sub(now) < minLead {
			return fmt.Errorf("%w: target time must be at least %s ahead", ErrOutOfRange, minLead)
		}
	case KindDaily:
		if !in.Daily.Valid() {
			return fmt.Errorf("%w: invalid daily time %s", ErrOutOfRange, in.Daily)
		}
	default:
		return fmt.Errorf("%w: unknown input kind %d", ErrOutOfRange, in.Kind)
	}
	return nil
}

// ValidateSchedule applies the tighter bounds used when actually committing a
// countdown: durations in (10s, 24h], absolute instants within 24 hours.
// Daily inputs pass; each occurrence lands within the next 24 hours anyway.
func (r *Resolver) ValidateSchedule(in TimeInput, now time.Time) error {
	if err := r.Validate(in, now); err != nil {
		return err
	}
	switch in.Kind {
	case KindDuration:
		if in.Span > maxEngine {
			return fmt.Errorf("%w: duration exceeds 24 hours", ErrOutOfRange)
		}
	case KindAbsolute:
		if in.At.Sub(now) > maxEngine {
			return fmt.Errorf("%w: target time exceeds 24 hours ahead", ErrOutOfRange)
		}
	}
	return nil
}
