// Package shutdown performs the terminal action when a countdown finishes.
//
// The engine never calls this package directly: the app's event loop triggers
// an Executor on Finished/TaskCompleted, and failures flow back to the engine
// exclusively through ReportError.
package shutdown

import (
	"context"

	logx "github.com/duantianjun/qtshut/pkg/logx"
)

// Executor powers the machine off (or pretends to).
type Executor interface {
	// Shutdown initiates poweroff. A nil return means the request was
	// accepted by the OS, not that the machine is already down.
	Shutdown(ctx context.Context) error
	// Describe names the mechanism, for logs and status output.
	Describe() string
}

// NewSystem returns the real platform executor.
func NewSystem(log logx.Logger) Executor {
	if log.IsZero() {
		log = logx.Nop()
	}
	return newSystem(log)
}

// Simulator is a dry-run executor: it logs instead of acting. Used in tests,
// with the -simulate flag, and when shutdown.simulate is configured.
type Simulator struct {
	log logx.Logger
}

func NewSimulator(log logx.Logger) *Simulator {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Simulator{log: log}
}

func (s *Simulator) Shutdown(ctx context.Context) error {
	_ = ctx
	s.log.Warn("simulated shutdown: no action taken")
	return nil
}

func (s *Simulator) Describe() string { return "simulate" }
