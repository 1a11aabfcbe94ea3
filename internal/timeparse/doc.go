// Package timeparse resolves user-typed time expressions into a typed time
// input: a relative duration ("30分钟", "2h"), an absolute clock time today or
// tomorrow ("22:30", "晚上10点"), or a daily recurring time ("每天22:00").
//
// Resolution stages, tried in order (first match wins):
//
//  1. Numeral normalization: spelled-out numerals 0-60 (三十 → 30, 两 → 2) are
//     substituted textually, longest match first.
//  2. Fixed idioms: a closed phrase table (半小时后, 明天, 今晚, 中午, ...).
//  3. Daily recurrence: 每天/每日/every day + HH[:MM].
//  4. Relative duration: <amount><unit>, units in Chinese or Latin script.
//  5. Absolute clock time: optional day-segment word + HH[:MM], rolled to
//     tomorrow when today's occurrence has passed.
//
// The resolver is pure: it holds only immutable lookup tables and compiled
// patterns. Construct one at startup and share it.
package timeparse
