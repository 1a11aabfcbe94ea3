package shutdown

import (
	"context"
	"testing"

	logx "github.com/duantianjun/qtshut/pkg/logx"
)

func TestSimulator(t *testing.T) {
	t.Parallel()
	sim := NewSimulator(logx.Nop())

	if err := sim.Shutdown(context.Background()); err != nil {
		t.Fatalf("simulated shutdown error: %v", err)
	}
	if sim.Describe() == "" {
		t.Fatal("Describe must name the mechanism")
	}
}

func TestNewSystemDescribes(t *testing.T) {
	t.Parallel()
	// Constructing the real executor must not touch the system; only
	// Shutdown does.
	exec := NewSystem(logx.Nop())
	if exec.Describe() == "" {
		t.Fatal("Describe must name the mechanism")
	}
}
