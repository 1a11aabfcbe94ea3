// Package task defines the persisted description of a scheduled shutdown:
// what kind of task it is (one-shot or daily) and when it should fire.
// A Descriptor is independent of any live countdown.
package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Kind distinguishes one-shot from daily-recurring tasks.
type Kind string

const (
	KindOnce  Kind = "once"
	KindDaily Kind = "daily"
)

func (k Kind) Valid() bool { return k == KindOnce || k == KindDaily }

func (k Kind) String() string {
	switch k {
	case KindOnce:
		return "once"
	case KindDaily:
		return "daily"
	default:
		return string(k)
	}
}

// TimeOfDay is a wall-clock time without a date, used by daily tasks.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute, Second: second}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %02d:%02d:%02d", hour, minute, second)
	}
	return t, nil
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60 && t.Second >= 0 && t.Second < 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ParseTimeOfDay parses the HH:MM:SS form produced by String.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return NewTimeOfDay(h, m, sec)
}

// dailyParser resolves "minute hour * * *" specs; seconds are added on top of
// the cron result since standard cron has minute resolution.
var dailyParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Next returns the first occurrence of this time of day strictly after now,
// rolling to tomorrow when today's occurrence has already passed.
func (t TimeOfDay) Next(now time.Time) (time.Time, error) {
	if !t.Valid() {
		return time.Time{}, fmt.Errorf("invalid time of day %s", t)
	}
	sched, err := dailyParser.Parse(fmt.Sprintf("%d %d * * *", t.Minute, t.Hour))
	if err != nil {
		return time.Time{}, fmt.Errorf("daily schedule: %w", err)
	}
	// Anchor the cron walk before the second offset so HH:MM:SS later today is
	// still found when now is between HH:MM:00 and HH:MM:SS.
	sec := time.Duration(t.Second) * time.Second
	next := sched.Next(now.Add(-sec)).Add(sec)
	if !next.After(now) {
		next = sched.Next(next.Add(-sec)).Add(sec)
	}
	return next, nil
}

// Descriptor is the persisted record describing a scheduled shutdown.
// Created when a schedule is committed; cleared on cancel or completion.
type Descriptor struct {
	Kind       Kind
	TargetTime *time.Time // once tasks
	DailyTime  *TimeOfDay // daily tasks
	Enabled    bool
	CreatedAt  time.Time
}

// Once builds a one-shot descriptor for the given target instant.
func Once(target time.Time, now time.Time) Descriptor {
	return Descriptor{Kind: KindOnce, TargetTime: &target, Enabled: true, CreatedAt: now}
}

// Daily builds a daily-recurring descriptor for the given time of day.
func Daily(at TimeOfDay, now time.Time) Descriptor {
	return Descriptor{Kind: KindDaily, DailyTime: &at, Enabled: true, CreatedAt: now}
}

// Validate checks internal consistency of the descriptor.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindOnce:
		if d.TargetTime == nil {
			return errors.New("once task missing target time")
		}
	case KindDaily:
		if d.DailyTime == nil {
			return errors.New("daily task missing time of day")
		}
		if !d.DailyTime.Valid() {
			return fmt.Errorf("daily task has invalid time of day %s", d.DailyTime)
		}
	default:
		return fmt.Errorf("unknown task kind %q", string(d.Kind))
	}
	return nil
}

// NextOccurrence resolves the instant the task should fire next, relative to
// now. For once tasks that is the stored target, which may be in the past;
// the caller decides whether to clear it. For daily tasks it is always a
// strictly-future occurrence.
func (d Descriptor) NextOccurrence(now time.Time) (time.Time, error) {
	if err := d.Validate(); err != nil {
		return time.Time{}, err
	}
	if d.Kind == KindOnce {
		return *d.TargetTime, nil
	}
	return d.DailyTime.Next(now)
}
