package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The persisted record is a plain key=value text block, one field per line.
// Absence of the record (not an empty one) means "no scheduled task".
//
//	kind = once
//	target_time = 2025-01-02T22:00:00+08:00
//	daily_time =
//	enabled = true
//	created_at = 2025-01-02T21:00:00+08:00

const (
	keyKind       = "kind"
	keyTargetTime = "target_time"
	keyDailyTime  = "daily_time"
	keyEnabled    = "enabled"
	keyCreatedAt  = "created_at"
)

// ErrMalformed reports a record that could not be decoded.
var ErrMalformed = errors.New("malformed task record")

// Encode renders the descriptor in its key=value text form.
func Encode(d Descriptor) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	target := ""
	if d.TargetTime != nil {
		target = d.TargetTime.Format(time.RFC3339)
	}
	daily := ""
	if d.DailyTime != nil {
		daily = d.DailyTime.String()
	}

	var b strings.Builder
	writeField := func(k, v string) {
		b.WriteString(k)
		b.WriteString(" = ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	writeField(keyKind, d.Kind.String())
	writeField(keyTargetTime, target)
	writeField(keyDailyTime, daily)
	writeField(keyEnabled, strconv.FormatBool(d.Enabled))
	writeField(keyCreatedAt, d.CreatedAt.Format(time.RFC3339))
	return []byte(b.String()), nil
}

// Decode parses a record produced by Encode. Unknown keys are rejected so a
// corrupt or foreign file is detected rather than silently half-read.
func Decode(data []byte) (Descriptor, error) {
	fields := map[string]string{}
	for ln, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: line %d has no '='", ErrMalformed, ln+1)
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		switch k {
		case keyKind, keyTargetTime, keyDailyTime, keyEnabled, keyCreatedAt:
			fields[k] = v
		default:
			return Descriptor{}, fmt.Errorf("%w: unknown key %q", ErrMalformed, k)
		}
	}
	if _, ok := fields[keyKind]; !ok {
		return Descriptor{}, fmt.Errorf("%w: missing %s", ErrMalformed, keyKind)
	}

	var d Descriptor
	d.Kind = Kind(fields[keyKind])
	if !d.Kind.Valid() {
		return Descriptor{}, fmt.Errorf("%w: unknown kind %q", ErrMalformed, fields[keyKind])
	}

	if v := fields[keyTargetTime]; v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: %s: %v", ErrMalformed, keyTargetTime, err)
		}
		d.TargetTime = &t
	}
	if v := fields[keyDailyTime]; v != "" {
		tod, err := ParseTimeOfDay(v)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: %s: %v", ErrMalformed, keyDailyTime, err)
		}
		d.DailyTime = &tod
	}
	if v := fields[keyEnabled]; v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: %s: %v", ErrMalformed, keyEnabled, err)
		}
		d.Enabled = enabled
	}
	if v := fields[keyCreatedAt]; v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: %s: %v", ErrMalformed, keyCreatedAt, err)
		}
		d.CreatedAt = t
	}

	if err := d.Validate(); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return d, nil
}
