package countdown

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/duantianjun/qtshut/internal/eventbus"
	"github.com/duantianjun/qtshut/internal/task"
	logx "github.com/duantianjun/qtshut/pkg/logx"
)

// ErrInvalidTarget reports a Start target that is not in the future.
var ErrInvalidTarget = errors.New("target time is not in the future")

// Engine drives at most one countdown at a time.
type Engine struct {
	log logx.Logger
	bus *eventbus.Bus[Update]

	// mu serializes control calls (Start/Cancel/Pause/Resume/Reset) and
	// guards cur. The tick goroutine never takes mu so control calls can wait
	// on it without deadlocking.
	mu  sync.Mutex
	cur *run

	// stMu guards the status snapshot; the tick goroutine is the sole writer
	// while a run is live.
	stMu   sync.RWMutex
	status Status

	paused atomic.Bool
}

// run is the per-Start state owned by one tick goroutine. The cancel channel
// is one-shot and never reused across runs.
type run struct {
	target    time.Time
	desc      *task.Descriptor
	startedAt time.Time

	cancel chan struct{} // closed to stop the tick goroutine
	resume chan struct{} // signalled to wake a paused run
	done   chan struct{} // closed by the tick goroutine on exit

	pausedMS atomic.Int64 // accumulated pause time
	quiet    atomic.Bool  // suppress the Cancelled transition on teardown
}

func New(log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{
		log:    log,
		bus:    eventbus.New[Update](),
		status: Status{Phase: PhaseIdle},
	}
}

// Subscribe returns a receive channel of run events plus an unsubscribe func.
// Publishing never blocks; a subscriber whose buffer is full misses events.
func (e *Engine) Subscribe(buffer int) (<-chan Update, func()) {
	return e.bus.Subscribe(buffer)
}

// Status returns a snapshot of the current state.
func (e *Engine) Status() Status {
	e.stMu.RLock()
	defer e.stMu.RUnlock()
	return e.status
}

// Start begins a countdown toward target, optionally carrying the descriptor
// that will be attached to the terminal TaskCompleted event. Any prior run is
// torn down first, so at most one tick goroutine is ever live.
func (e *Engine) Start(target time.Time, desc *task.Descriptor) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if !target.After(now) {
		// Leave state untouched.
		return ErrInvalidTarget
	}

	e.stopLocked(false)

	e.paused.Store(false)
	r := &run{
		target:    target,
		desc:      desc,
		startedAt: now,
		cancel:    make(chan struct{}),
		resume:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	e.cur = r
	e.setStatus(Status{Phase: PhaseRunning, Remaining: target.Sub(now)})

	e.log.Info("countdown started",
		logx.Time("target", target),
		logx.Duration("total", target.Sub(now)),
		logx.Bool("has_task", desc != nil),
	)
	go e.tick(r)
	return nil
}

// Cancel stops the live run, if any, and moves the engine to Cancelled.
// Idempotent: the Cancelled event is published at most once per run.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(false)
	e.setStatus(Status{Phase: PhaseCancelled})
}

// Pause suspends the live run. Effective only while running and not paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil || e.Status().Phase != PhaseRunning || e.paused.Load() {
		return
	}
	e.paused.Store(true)
	e.markPaused(true)
	e.log.Debug("countdown paused")
	e.bus.Publish(Update{Kind: UpdatePaused})
}

// Resume wakes a paused run. Effective only while running and paused.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil || e.Status().Phase != PhaseRunning || !e.paused.Load() {
		return
	}
	e.paused.Store(false)
	select {
	case e.cur.resume <- struct{}{}:
	default:
	}
	e.markPaused(false)
	e.log.Debug("countdown resumed")
	e.bus.Publish(Update{Kind: UpdateResumed})
}

// Reset cancels any live run and forces the engine back to Idle. Used for
// recovery and shutdown plumbing rather than as a user-facing stop, so the
// teardown is silent: no Cancelled event reaches subscribers.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(true)
	e.setStatus(Status{Phase: PhaseIdle})
}

// ReportError is the entry point for external collaborators (the shutdown
// executor) to surface a failure. It tears the live run down without emitting
// Cancelled, then broadcasts the error. Only a new Start leaves PhaseError.
func (e *Engine) ReportError(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(true)
	e.setStatus(Status{Phase: PhaseError, Err: msg})
	e.log.Error("countdown error reported", logx.String("reason", msg))
	e.bus.Publish(Update{Kind: UpdateError, Err: msg})
}

// stopLocked signals the live tick goroutine and waits for it to exit.
// Call with mu held. No-op when no run is live. quiet suppresses the
// Cancelled transition/event in the tick goroutine.
func (e *Engine) stopLocked(quiet bool) {
	r := e.cur
	if r == nil {
		return
	}
	r.quiet.Store(quiet)
	close(r.cancel)
	<-r.done
	e.cur = nil
}

func (e *Engine) setStatus(s Status) {
	e.stMu.Lock()
	e.status = s
	e.stMu.Unlock()
}

func (e *Engine) markPaused(paused bool) {
	e.stMu.Lock()
	if e.status.Phase == PhaseRunning {
		e.status.Paused = paused
	}
	e.stMu.Unlock()
}
