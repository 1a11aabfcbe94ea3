package timeparse

import (
	"fmt"
	"strings"
	"time"
)

// FormatClock renders a duration as a countdown clock: HH:MM:SS when an hour
// or more remains, MM:SS below that, 00:00:00 for zero or negative values.
func FormatClock(d time.Duration) string {
	total := int64(d / time.Second)
	if total <= 0 {
		return "00:00:00"
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatSpan renders a duration in words (1天2小时, 30分钟, 45秒).
func FormatSpan(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d天", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d小时", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d分钟", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d秒", seconds))
	}
	return strings.Join(parts, "")
}

// FormatInput renders a resolved input for display.
func (r *Resolver) FormatInput(in TimeInput, now time.Time) string {
	switch in.Kind {
	case KindDuration:
		return FormatSpan(in.Span) + "后"
	case KindAbsolute:
		switch days := daysBetween(now, in.At); {
		case days == 0:
			return "今天 " + in.At.Format("15:04")
		case days == 1:
			return "明天 " + in.At.Format("15:04")
		case days < 7:
			return fmt.Sprintf("%d天后 %s", days, in.At.Format("15:04"))
		default:
			return in.At.Format("01月02日 15:04")
		}
	case KindDaily:
		return fmt.Sprintf("每天 %02d:%02d", in.Daily.Hour, in.Daily.Minute)
	default:
		return ""
	}
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	return int(t.Sub(f) / (24 * time.Hour))
}

// Examples lists supported expression shapes for help output.
func Examples() [][2]string {
	return [][2]string{
		{"relative", "30分钟, 2小时, 45 min, 1h"},
		{"absolute", "22:30, 晚上10点, 下午2:30"},
		{"daily", "每天8点, 每天18:30, every day 22:00"},
		{"idiom", "半小时后, 明天, 今晚, 中午"},
		{"spelled numerals", "三十分钟, 两小时, 明天八点"},
	}
}
