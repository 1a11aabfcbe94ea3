package countdown

import (
	"time"

	"github.com/duantianjun/qtshut/internal/task"
)

// Phase is the coarse engine state.
type Phase int

const (
	// PhaseIdle means no task has been scheduled (initial state, and the
	// state after Reset).
	PhaseIdle Phase = iota
	// PhaseRunning means a countdown is live (possibly paused).
	PhaseRunning
	// PhaseFinished means the countdown reached zero.
	PhaseFinished
	// PhaseCancelled means the run was cancelled.
	PhaseCancelled
	// PhaseError means an externally reported failure; only a new Start
	// leaves it.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	case PhaseCancelled:
		return "cancelled"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of the engine.
type Status struct {
	Phase     Phase
	Remaining time.Duration // meaningful while running
	Paused    bool          // meaningful while running
	Err       string        // meaningful in PhaseError
}

// UpdateKind enumerates the closed set of events a run can emit.
type UpdateKind int

const (
	UpdateProgress UpdateKind = iota
	UpdateFinished
	UpdateCancelled
	UpdatePaused
	UpdateResumed
	UpdateTaskCompleted
	UpdateError
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateProgress:
		return "progress"
	case UpdateFinished:
		return "finished"
	case UpdateCancelled:
		return "cancelled"
	case UpdatePaused:
		return "paused"
	case UpdateResumed:
		return "resumed"
	case UpdateTaskCompleted:
		return "task_completed"
	case UpdateError:
		return "error"
	default:
		return "unknown"
	}
}

// Update is one event on the engine's fan-out stream.
type Update struct {
	Kind      UpdateKind
	Remaining time.Duration    // UpdateProgress
	Percent   float64          // UpdateProgress, in [0,100]
	Task      *task.Descriptor // UpdateTaskCompleted
	Err       string           // UpdateError
}
