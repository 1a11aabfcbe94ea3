package countdown

import (
	"time"

	logx "github.com/duantianjun/qtshut/pkg/logx"
)

// tick is the body of the single background goroutine owning one run.
//
// Loop order matters: the cancel check always comes before the pause wait so
// a paused countdown cancels immediately instead of blocking until resume.
// Worst-case cancel latency otherwise is one pending one-second tick.
func (e *Engine) tick(r *run) {
	defer close(r.done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		// Non-blocking cancel check first.
		select {
		case <-r.cancel:
			e.finishCancelled(r)
			return
		default:
		}

		if e.paused.Load() {
			// Drop a stale wake token left by a Resume that raced ahead of
			// the previous pause cycle, then re-check before blocking so a
			// real token is never discarded.
			select {
			case <-r.resume:
			default:
			}
			if !e.paused.Load() {
				continue
			}
			pauseStart := time.Now()
			// Block until resumed, still honoring cancellation.
			select {
			case <-r.cancel:
				e.finishCancelled(r)
				return
			case <-r.resume:
				r.pausedMS.Add(time.Since(pauseStart).Milliseconds())
			}
			continue
		}

		select {
		case <-r.cancel:
			e.finishCancelled(r)
			return
		case <-ticker.C:
		}

		now := time.Now()
		pausedTotal := time.Duration(r.pausedMS.Load()) * time.Millisecond
		// Paused time shifts the effective deadline forward.
		adjusted := r.target.Add(pausedTotal)
		remaining := adjusted.Sub(now)

		if remaining <= 0 {
			e.setStatus(Status{Phase: PhaseFinished})
			e.log.Info("countdown finished", logx.Time("target", r.target), logx.Duration("paused_total", pausedTotal))
			e.bus.Publish(Update{Kind: UpdateFinished})
			if r.desc != nil {
				e.bus.Publish(Update{Kind: UpdateTaskCompleted, Task: r.desc})
			}
			return
		}

		e.setStatus(Status{Phase: PhaseRunning, Remaining: remaining, Paused: e.paused.Load()})
		e.bus.Publish(Update{
			Kind:      UpdateProgress,
			Remaining: remaining,
			Percent:   progressPercent(r.startedAt, adjusted, now),
		})
	}
}

func (e *Engine) finishCancelled(r *run) {
	if r.quiet.Load() {
		// Teardown on behalf of ReportError/Reset: the caller owns the next
		// state transition.
		return
	}
	e.setStatus(Status{Phase: PhaseCancelled})
	e.log.Info("countdown cancelled")
	e.bus.Publish(Update{Kind: UpdateCancelled})
}

// progressPercent maps elapsed time onto [0,100].
func progressPercent(start, target, now time.Time) float64 {
	total := target.Sub(start)
	if total <= 0 {
		return 100
	}
	p := float64(now.Sub(start)) / float64(total) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
