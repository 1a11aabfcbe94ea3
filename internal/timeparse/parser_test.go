package timeparse

import (
	"errors"
	"testing"
	"time"

	"github.com/duantianjun/qtshut/internal/task"
)

// refNow is a fixed mid-morning reference so absolute expressions resolve
// deterministically.
var refNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

func TestResolveDurations(t *testing.T) {
	t.Parallel()
	r := NewResolver()

	tests := []struct {
		name string
		raw  string
		span time.Duration
	}{
		{name: "minutes zh", raw: "30分钟", span: 30 * time.Minute},
		{name: "hours zh", raw: "2小时", span: 2 * time.Hour},
		{name: "seconds zh", raw: "90秒", span: 90 * time.Second},
		{name: "short unit", raw: "1h", span: time.Hour},
		{name: "spaced en", raw: "45 min", span: 45 * time.Minute},
		{name: "plural en", raw: "2 hours", span: 2 * time.Hour},
		{name: "spelled amount", raw: "三十分钟", span: 30 * time.Minute},
		{name: "liang", raw: "两小时", span: 2 * time.Hour},
		{name: "compound tens", raw: "二十五分钟", span: 25 * time.Minute},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveAt(tt.raw, refNow)
			if err != nil {
				t.Fatalf("ResolveAt(%q) error: %v", tt.raw, err)
			}
			if got.Kind != KindDuration {
				t.Fatalf("Kind = %v, want KindDuration", got.Kind)
			}
			if got.Span != tt.span {
				t.Fatalf("Span = %v, want %v", got.Span, tt.span)
			}
		})
	}
}

func TestResolveDaily(t *testing.T) {
	t.Parallel()
	r := NewResolver()

	tests := []struct {
		name string
		raw  string
		want task.TimeOfDay
	}{
		{name: "zh colon", raw: "每天22:00", want: task.TimeOfDay{Hour: 22}},
		{name: "zh dot hour", raw: "每天8点", want: task.TimeOfDay{Hour: 8}},
		{name: "en", raw: "every day 18:30", want: task.TimeOfDay{Hour: 18, Minute: 30}},
		{name: "daily keyword", raw: "daily 7:15", want: task.TimeOfDay{Hour: 7, Minute: 15}},
		{name: "spelled hour", raw: "每天八点", want: task.TimeOfDay{Hour: 8}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveAt(tt.raw, refNow)
			if err != nil {
				t.Fatalf("ResolveAt(%q) error: %v", tt.raw, err)
			}
			if got.Kind != KindDaily {
				t.Fatalf("Kind = %v, want KindDaily", got.Kind)
			}
			if got.Daily != tt.want {
				t.Fatalf("Daily = %v, want %v", got.Daily, tt.want)
			}
		})
	}
}

func TestResolveAbsolute(t *testing.T) {
	t.Parallel()
	r := NewResolver()

	day := func(d, hour, minute int) time.Time {
		return time.Date(2025, 6, 15+d, hour, minute, 0, 0, time.Local)
	}
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "future today", raw: "22:30", want: day(0, 22, 30)},
		{name: "past rolls to tomorrow", raw: "08:00", want: day(1, 8, 0)},
		{name: "fullwidth colon", raw: "21：15", want: day(0, 21, 15)},
		// Segment adjustment: clamp(anchor+hour-8, 0, 23), applied when hour <= 12.
		{name: "evening 12h clock", raw: "晚上10点", want: day(0, 22, 0)},
		{name: "evening spelled", raw: "晚上十点", want: day(0, 22, 0)},
		{name: "morning anchor identity", raw: "早上8点", want: day(1, 8, 0)},
		{name: "late night clamps high", raw: "深夜12点", want: day(0, 23, 0)},
		{name: "morning clamps low", raw: "早上0点", want: day(1, 0, 0)},
		{name: "24h clock untouched by segment", raw: "晚上22:30", want: day(0, 22, 30)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveAt(tt.raw, refNow)
			if err != nil {
				t.Fatalf("ResolveAt(%q) error: %v", tt.raw, err)
			}
			if got.Kind != KindAbsolute {
				t.Fatalf("Kind = %v, want KindAbsolute", got.Kind)
			}
			if !got.At.Equal(tt.want) {
				t.Fatalf("At = %v, want %v", got.At, tt.want)
			}
		})
	}
}

func TestResolveIdioms(t *testing.T) {
	t.Parallel()
	r := NewResolver()

	t.Run("half hour", func(t *testing.T) {
		got, err := r.ResolveAt("半小时后", refNow)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if got.Kind != KindDuration || got.Span != 30*time.Minute {
			t.Fatalf("got %+v, want 30m duration", got)
		}
	})

	t.Run("spelled hour idiom", func(t *testing.T) {
		// 一小时后 normalizes to 1小时后 before the idiom lookup.
		got, err := r.ResolveAt("一小时后", refNow)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if got.Kind != KindDuration || got.Span != time.Hour {
			t.Fatalf("got %+v, want 1h duration", got)
		}
	})

	abs := []struct {
		raw  string
		want time.Time
	}{
		{raw: "明天", want: time.Date(2025, 6, 16, 9, 0, 0, 0, time.Local)},
		{raw: "后天", want: time.Date(2025, 6, 17, 9, 0, 0, 0, time.Local)},
		{raw: "明早", want: time.Date(2025, 6, 16, 7, 0, 0, 0, time.Local)},
		{raw: "凌晨", want: time.Date(2025, 6, 16, 2, 0, 0, 0, time.Local)},
		{raw: "今晚", want: time.Date(2025, 6, 15, 20, 0, 0, 0, time.Local)},
		{raw: "中午", want: time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)},
	}
	for _, tt := range abs {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			got, err := r.ResolveAt(tt.raw, refNow)
			if err != nil {
				t.Fatalf("ResolveAt(%q) error: %v", tt.raw, err)
			}
			if got.Kind != KindAbsolute || !got.At.Equal(tt.want) {
				t.Fatalf("got %+v, want %v", got, tt.want)
			}
		})
	}

	t.Run("tonight rolls after passing", func(t *testing.T) {
		late := time.Date(2025, 6, 15, 21, 0, 0, 0, time.Local)
		got, err := r.ResolveAt("今晚", late)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		want := time.Date(2025, 6, 16, 20, 0, 0, 0, time.Local)
		if !got.At.Equal(want) {
			t.Fatalf("At = %v, want %v", got.At, want)
		}
	})
}

func TestResolveInvalid(t *testing.T) {
	t.Parallel()
	r := NewResolver()

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "", want: ErrUnrecognized},
		{name: "blank", raw: "   ", want: ErrUnrecognized},
		{name: "garbage", raw: "随便什么", want: ErrUnrecognized},
		{name: "hour too large", raw: "25:00", want: ErrOutOfRange},
		{name: "zero duration", raw: "0分钟", want: ErrOutOfRange},
		{name: "duration too long", raw: "9000小时", want: ErrOutOfRange},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ResolveAt(tt.raw, refNow)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ResolveAt(%q) error = %v, want %v", tt.raw, err, tt.want)
			}
		})
	}
}

func TestRemainingSeconds(t *testing.T) {
	t.Parallel()
	r := NewResolver()

	if got := r.RemainingSeconds(DurationInput(90*time.Second), refNow); got != 90 {
		t.Fatalf("duration remaining = %d, want 90", got)
	}
	if got := r.RemainingSeconds(AbsoluteInput(refNow.Add(time.Hour)), refNow); got != 3600 {
		t.Fatalf("absolute remaining = %d, want 3600", got)
	}
	// Past absolute targets are reported as zero, never negative.
	if got := r.RemainingSeconds(AbsoluteInput(refNow.Add(-time.Hour)), refNow); got != 0 {
		t.Fatalf("past absolute remaining = %d, want 0", got)
	}
	// Daily 09:00 at 10:00 rolls to tomorrow: 23 hours out.
	if got := r.RemainingSeconds(DailyInput(task.TimeOfDay{Hour: 9}), refNow); got != 23*3600 {
		t.Fatalf("daily remaining = %d, want %d", got, 23*3600)
	}

	if !r.IsExpired(AbsoluteInput(refNow.Add(-time.Minute)), refNow) {
		t.Fatal("expected past absolute input to be expired")
	}
	if r.IsExpired(DurationInput(time.Minute), refNow) {
		t.Fatal("duration input should not be expired")
	}
}
