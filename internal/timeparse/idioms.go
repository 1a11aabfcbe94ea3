package timeparse

import "time"

// Idiom targets are matched against the whole (numeral-normalized) input, so
// 一小时后 arrives here as 1小时后.

// todayAt resolves the given clock time today, rolled to tomorrow when it has
// already passed.
func todayAt(now time.Time, hour int) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// daysAheadAt resolves the given clock time a fixed number of days ahead.
func daysAheadAt(now time.Time, days, hour int) time.Time {
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
}

func buildIdioms() map[string]func(now time.Time) TimeInput {
	spanIdiom := func(d time.Duration) func(time.Time) TimeInput {
		return func(time.Time) TimeInput { return DurationInput(d) }
	}
	today := func(hour int) func(time.Time) TimeInput {
		return func(now time.Time) TimeInput { return AbsoluteInput(todayAt(now, hour)) }
	}
	ahead := func(days, hour int) func(time.Time) TimeInput {
		return func(now time.Time) TimeInput { return AbsoluteInput(daysAheadAt(now, days, hour)) }
	}

	return map[string]func(now time.Time) TimeInput{
		"半小时后": spanIdiom(30 * time.Minute),
		"1小时后": spanIdiom(1 * time.Hour),
		"2小时后": spanIdiom(2 * time.Hour),
		"3小时后": spanIdiom(3 * time.Hour),

		"明天":   ahead(1, 9),
		"后天":   ahead(2, 9),
		"明早":   ahead(1, 7),
		"明天早上": ahead(1, 7),
		"明天晚上": ahead(1, 20),
		"凌晨":   ahead(1, 2),

		"今晚": today(20),
		"中午": today(12),
		"下午": today(14),
		"晚上": today(20),
		"深夜": today(23),
	}
}
