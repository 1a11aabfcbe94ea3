package task

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTimeOfDayNext(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 15, 10, 0, 10, 0, time.Local)

	tests := []struct {
		name string
		tod  TimeOfDay
		want time.Time
	}{
		{
			name: "later today",
			tod:  TimeOfDay{Hour: 22, Minute: 30},
			want: time.Date(2025, 6, 15, 22, 30, 0, 0, time.Local),
		},
		{
			name: "already passed rolls to tomorrow",
			tod:  TimeOfDay{Hour: 9},
			want: time.Date(2025, 6, 16, 9, 0, 0, 0, time.Local),
		},
		{
			name: "seconds later in the current minute",
			tod:  TimeOfDay{Hour: 10, Second: 30},
			want: time.Date(2025, 6, 15, 10, 0, 30, 0, time.Local),
		},
		{
			name: "seconds just passed rolls to tomorrow",
			tod:  TimeOfDay{Hour: 10, Second: 5},
			want: time.Date(2025, 6, 16, 10, 0, 5, 0, time.Local),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tod.Next(now)
			if err != nil {
				t.Fatalf("Next error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Next = %v, want %v", got, tt.want)
			}
			if !got.After(now) {
				t.Fatalf("Next = %v is not after now %v", got, now)
			}
		})
	}

	if _, err := (TimeOfDay{Hour: 24}).Next(now); err == nil {
		t.Fatal("expected error for invalid time of day")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()
	got, err := ParseTimeOfDay("22:05:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay error: %v", err)
	}
	if got != (TimeOfDay{Hour: 22, Minute: 5, Second: 30}) {
		t.Fatalf("unexpected result: %v", got)
	}
	if got.String() != "22:05:30" {
		t.Fatalf("String = %q", got.String())
	}

	for _, raw := range []string{"", "25:00:00", "10:61:00", "abc"} {
		if _, err := ParseTimeOfDay(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestDescriptorValidate(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

	once := Once(now.Add(time.Hour), now)
	if err := once.Validate(); err != nil {
		t.Fatalf("once descriptor invalid: %v", err)
	}
	daily := Daily(TimeOfDay{Hour: 22}, now)
	if err := daily.Validate(); err != nil {
		t.Fatalf("daily descriptor invalid: %v", err)
	}

	bad := []Descriptor{
		{Kind: KindOnce},
		{Kind: KindDaily},
		{Kind: KindDaily, DailyTime: &TimeOfDay{Hour: 25}},
		{Kind: Kind("weekly")},
	}
	for _, d := range bad {
		if err := d.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", d)
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

	target := now.Add(-time.Hour)
	once := Once(target, now)
	got, err := once.NextOccurrence(now)
	if err != nil {
		t.Fatalf("NextOccurrence error: %v", err)
	}
	// Once tasks return their stored target even when it has passed;
	// the caller decides whether to clear it.
	if !got.Equal(target) {
		t.Fatalf("NextOccurrence = %v, want %v", got, target)
	}

	daily := Daily(TimeOfDay{Hour: 9}, now)
	got, err = daily.NextOccurrence(now)
	if err != nil {
		t.Fatalf("NextOccurrence error: %v", err)
	}
	if !got.After(now) {
		t.Fatalf("daily occurrence %v is not in the future", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	created := time.Date(2025, 6, 15, 21, 0, 0, 0, time.FixedZone("CST", 8*3600))
	target := time.Date(2025, 6, 15, 22, 0, 0, 0, time.FixedZone("CST", 8*3600))

	tests := []struct {
		name string
		d    Descriptor
	}{
		{name: "once", d: Once(target, created)},
		{name: "daily", d: Daily(TimeOfDay{Hour: 22, Minute: 30}, created)},
		{name: "disabled", d: Descriptor{Kind: KindDaily, DailyTime: &TimeOfDay{Hour: 8}, Enabled: false, CreatedAt: created}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(tt.d)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			got, err := Decode(b)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if diff := cmp.Diff(tt.d, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "no equals", raw: "kind once\n"},
		{name: "unknown key", raw: "kind = once\nflavor = spicy\n"},
		{name: "unknown kind", raw: "kind = weekly\n"},
		{name: "bad target time", raw: "kind = once\ntarget_time = yesterday\n"},
		{name: "bad enabled", raw: "kind = once\ntarget_time = 2025-06-15T22:00:00+08:00\nenabled = maybe\n"},
		{name: "once without target", raw: "kind = once\nenabled = true\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.raw)); !errors.Is(err, ErrMalformed) {
				t.Fatalf("Decode error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestDecodeIgnoresCommentsAndBlanks(t *testing.T) {
	t.Parallel()
	raw := "# scheduled task\n\nkind = once\ntarget_time = 2025-06-15T22:00:00+08:00\ndaily_time =\nenabled = true\ncreated_at = 2025-06-15T21:00:00+08:00\n"
	d, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if d.Kind != KindOnce || !d.Enabled || d.TargetTime == nil {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
}
