//go:build !linux
// +build !linux

package shutdown

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	logx "github.com/duantianjun/qtshut/pkg/logx"
)

type systemExecutor struct {
	log logx.Logger
}

func newSystem(log logx.Logger) Executor {
	return &systemExecutor{log: log}
}

func (e *systemExecutor) Describe() string { return "shutdown command" }

func (e *systemExecutor) Shutdown(ctx context.Context) error {
	var argv []string
	switch runtime.GOOS {
	case "windows":
		argv = []string{"shutdown", "/s", "/t", "0"}
	default:
		argv = []string{"shutdown", "-h", "now"}
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", strings.Join(argv, " "), err, strings.TrimSpace(string(out)))
	}
	e.log.Info("shutdown command accepted", logx.String("cmd", strings.Join(argv, " ")))
	return nil
}
