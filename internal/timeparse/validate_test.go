package timeparse

import (
	"errors"
	"testing"
	"time"

	"github.com/duantianjun/qtshut/internal/task"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	r := NewResolver()
	now := refNow

	tests := []struct {
		name    string
		in      TimeInput
		wantErr bool
	}{
		{name: "duration ok", in: DurationInput(30 * time.Minute)},
		{name: "duration at floor", in: DurationInput(10 * time.Second)},
		{name: "duration below floor", in: DurationInput(5 * time.Second), wantErr: true},
		{name: "duration above horizon", in: DurationInput(366 * 24 * time.Hour), wantErr: true},
		{name: "absolute ok", in: AbsoluteInput(now.Add(time.Hour))},
		{name: "absolute past", in: AbsoluteInput(now.Add(-time.Minute)), wantErr: true},
		{name: "absolute lead too short", in: AbsoluteInput(now.Add(3 * time.Second)), wantErr: true},
		{name: "absolute beyond horizon", in: AbsoluteInput(now.Add(400 * 24 * time.Hour)), wantErr: true},
		{name: "daily ok", in: DailyInput(task.TimeOfDay{Hour: 22})},
		{name: "daily invalid", in: DailyInput(task.TimeOfDay{Hour: 24}), wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate(tt.in, now)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("Validate error = %v, want ErrOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate error: %v", err)
			}
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	t.Parallel()
	r := NewResolver()
	now := refNow

	if err := r.ValidateSchedule(DurationInput(24*time.Hour), now); err != nil {
		t.Fatalf("24h duration should schedule: %v", err)
	}
	if err := r.ValidateSchedule(DurationInput(25*time.Hour), now); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("25h duration error = %v, want ErrOutOfRange", err)
	}
	if err := r.ValidateSchedule(AbsoluteInput(now.Add(30*time.Hour)), now); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("30h absolute error = %v, want ErrOutOfRange", err)
	}
	// Daily inputs always pass the schedule bound: every occurrence is
	// within the next 24 hours.
	if err := r.ValidateSchedule(DailyInput(task.TimeOfDay{Hour: 3}), now); err != nil {
		t.Fatalf("daily should schedule: %v", err)
	}
}
