package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/duantianjun/qtshut/internal/task"
)

// ErrUnrecognized reports input that matched no resolution stage.
var ErrUnrecognized = errors.New("unrecognized time expression")

// ErrOutOfRange reports a value that parsed but violates a domain constraint
// (invalid clock component, lead time, horizon).
var ErrOutOfRange = errors.New("time out of range")

// InputKind tags the TimeInput union.
type InputKind int

const (
	// KindDuration is a relative span ("30分钟").
	KindDuration InputKind = iota
	// KindAbsolute is a concrete future instant ("今晚22:00").
	KindAbsolute
	// KindDaily is a recurring time of day ("每天22:00").
	KindDaily
)

// TimeInput is the resolved representation of a time expression. Exactly one
// of the payload fields is meaningful, selected by Kind. Immutable once
// produced.
type TimeInput struct {
	Kind  InputKind
	Span  time.Duration  // KindDuration
	At    time.Time      // KindAbsolute
	Daily task.TimeOfDay // KindDaily
}

func DurationInput(span time.Duration) TimeInput { return TimeInput{Kind: KindDuration, Span: span} }
func AbsoluteInput(at time.Time) TimeInput       { return TimeInput{Kind: KindAbsolute, At: at} }
func DailyInput(at task.TimeOfDay) TimeInput     { return TimeInput{Kind: KindDaily, Daily: at} }

// unitSeconds maps a lowercased unit token to its length in seconds.
var unitSeconds = map[string]int64{
	"秒": 1, "秒钟": 1, "s": 1, "sec": 1, "second": 1, "seconds": 1,
	"分": 60, "分钟": 60, "m": 60, "min": 60, "minute": 60, "minutes": 60,
	"时": 3600, "小时": 3600, "h": 3600, "hour": 3600, "hours": 3600,
}

// segmentAnchor maps a day-segment word to its anchor hour.
var segmentAnchor = map[string]int{
	"早上": 8,
	"上午": 10,
	"中午": 12,
	"下午": 14,
	"傍晚": 18,
	"晚上": 20,
	"深夜": 23,
}

// Resolver converts time expressions to TimeInput values. It holds only
// immutable lookup tables and compiled patterns; construct once and inject.
type Resolver struct {
	numerals []string // numeral keys, longest first

	durationPat *regexp.Regexp
	absolutePat *regexp.Regexp
	dailyPat    *regexp.Regexp

	idioms map[string]func(now time.Time) TimeInput
}

func NewResolver() *Resolver {
	r := &Resolver{
		numerals: numeralOrder(),

		// amount + unit, unit in either script ("30分钟", "2h", "45 min").
		durationPat: regexp.MustCompile(`(?i)(\d+)\s*(秒钟?|分钟?|小?时|[smh]|sec|min|hour)s?`),

		// optional day-segment word + HH[:MM] ("22:30", "晚上10点").
		absolutePat: regexp.MustCompile(`(早上|上午|中午|下午|傍晚|晚上|深夜)?\s*(\d{1,2})[：:]?(\d{2})?`),

		// daily keyword + HH[:MM] ("每天22:00", "every day 8:30").
		dailyPat: regexp.MustCompile(`(?i)(每天|每日|every\s*day|daily)\s*(\d{1,2})[：:]?(\d{2})?`),
	}
	r.idioms = buildIdioms()
	return r
}

// Resolve converts input to a TimeInput relative to the current wall clock.
func (r *Resolver) Resolve(input string) (TimeInput, error) {
	return r.ResolveAt(input, time.Now())
}

// ResolveAt is Resolve with an explicit reference instant.
func (r *Resolver) ResolveAt(input string, now time.Time) (TimeInput, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return TimeInput{}, fmt.Errorf("%w: empty input", ErrUnrecognized)
	}

	normalized := r.normalizeNumerals(trimmed)

	if fn, ok := r.idioms[normalized]; ok {
		return fn(now), nil
	}

	if m := r.dailyPat.FindStringSubmatch(normalized); m != nil {
		return parseDaily(m)
	}

	if m := r.durationPat.FindStringSubmatch(normalized); m != nil {
		return parseDuration(m)
	}

	if m := r.absolutePat.FindStringSubmatch(normalized); m != nil {
		return parseAbsolute(m, now)
	}

	return TimeInput{}, fmt.Errorf("%w: %q", ErrUnrecognized, input)
}

// parseDuration handles stage 4: <amount><unit>.
func parseDuration(m []string) (TimeInput, error) {
	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return TimeInput{}, fmt.Errorf("%w: amount %q", ErrUnrecognized, m[1])
	}
	unit := strings.ToLower(m[2])
	secs, ok := unitSeconds[unit]
	if !ok {
		return TimeInput{}, fmt.Errorf("%w: unit %q", ErrUnrecognized, unit)
	}
	span := time.Duration(amount*secs) * time.Second
	if span <= 0 {
		return TimeInput{}, fmt.Errorf("%w: duration must be positive", ErrOutOfRange)
	}
	if span > 365*24*time.Hour {
		return TimeInput{}, fmt.Errorf("%w: duration exceeds 365 days", ErrOutOfRange)
	}
	return DurationInput(span), nil
}

// parseAbsolute handles stage 5: optional day-segment word + HH[:MM].
func parseAbsolute(m []string, now time.Time) (TimeInput, error) {
	segment := m[1]
	hour, err := strconv.Atoi(m[2])
	if err != nil {
		return TimeInput{}, fmt.Errorf("%w: hour %q", ErrUnrecognized, m[2])
	}
	minute := 0
	if m[3] != "" {
		if minute, err = strconv.Atoi(m[3]); err != nil {
			return TimeInput{}, fmt.Errorf("%w: minute %q", ErrUnrecognized, m[3])
		}
	}

	// Disambiguate 12-hour input against the segment word: "晚上8点" means
	// 20:00, not 08:00. The documented formula is anchor+hour-8 clamped to
	// [0,23]; it deliberately leaves hour > 12 untouched.
	if anchor, ok := segmentAnchor[segment]; ok && hour <= 12 {
		hour = clampHour(anchor + hour - 8)
	}

	if hour >= 24 || minute >= 60 {
		return TimeInput{}, fmt.Errorf("%w: invalid clock time %d:%02d", ErrOutOfRange, hour, minute)
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return AbsoluteInput(target), nil
}

// parseDaily handles stage 3: daily keyword + HH[:MM].
func parseDaily(m []string) (TimeInput, error) {
	hour, err := strconv.Atoi(m[2])
	if err != nil {
		return TimeInput{}, fmt.Errorf("%w: hour %q", ErrUnrecognized, m[2])
	}
	minute := 0
	if m[3] != "" {
		if minute, err = strconv.Atoi(m[3]); err != nil {
			return TimeInput{}, fmt.Errorf("%w: minute %q", ErrUnrecognized, m[3])
		}
	}
	tod, err := task.NewTimeOfDay(hour, minute, 0)
	if err != nil {
		return TimeInput{}, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	return DailyInput(tod), nil
}

func clampHour(h int) int {
	if h < 0 {
		return 0
	}
	if h > 23 {
		return 23
	}
	return h
}

// RemainingSeconds returns how many seconds remain until the input fires,
// relative to now. Pure; never negative. Daily inputs recompute the next
// occurrence, rolling to tomorrow when today's has passed.
func (r *Resolver) RemainingSeconds(in TimeInput, now time.Time) int64 {
	switch in.Kind {
	case KindDuration:
		return int64(in.Span / time.Second)
	case KindAbsolute:
		d := in.At.Sub(now)
		if d < 0 {
			return 0
		}
		return int64(d / time.Second)
	case KindDaily:
		next, err := in.Daily.Next(now)
		if err != nil {
			return 0
		}
		return int64(next.Sub(now) / time.Second)
	default:
		return 0
	}
}

// IsExpired reports whether the input no longer points at a future instant.
func (r *Resolver) IsExpired(in TimeInput, now time.Time) bool {
	return r.RemainingSeconds(in, now) <= 0
}
