// Package countdown owns the single-run countdown state machine.
//
// An Engine runs at most one countdown at a time. Start spawns one background
// tick goroutine that advances the run once per second; Start synchronously
// tears down any predecessor before spawning, so there is never more than one
// live tick goroutine per engine. Control calls (Cancel/Pause/Resume/Reset)
// are safe under concurrent callers.
//
// Consumers observe a run through Subscribe: a non-blocking fan-out of Update
// events (Progress, Finished, Cancelled, Paused, Resumed, TaskCompleted,
// Error). A slow subscriber drops events; it never stalls the tick goroutine.
//
// Paused time does not count toward the deadline: the effective target is
// shifted forward by the accumulated pause span, tracked at millisecond
// resolution so repeated pause/resume cycles do not drift.
package countdown
