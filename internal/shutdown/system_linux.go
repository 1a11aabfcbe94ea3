//go:build linux
// +build linux

package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/coreos/go-systemd/v22/login1"

	logx "github.com/duantianjun/qtshut/pkg/logx"
)

// systemExecutor prefers logind (works without a controlling TTY, honors
// inhibitor locks) and falls back to the classic commands when D-Bus is
// unavailable, e.g. inside minimal containers.
type systemExecutor struct {
	log logx.Logger
}

func newSystem(log logx.Logger) Executor {
	return &systemExecutor{log: log}
}

func (e *systemExecutor) Describe() string { return "logind/systemctl" }

func (e *systemExecutor) Shutdown(ctx context.Context) error {
	err := e.powerOffLogind(ctx)
	if err == nil {
		return nil
	}
	e.log.Warn("logind poweroff unavailable; falling back to command", logx.Err(err))

	fallbacks := [][]string{
		{"systemctl", "poweroff"},
		{"shutdown", "-h", "now"},
	}
	var errs []string
	for _, argv := range fallbacks {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		out, err := cmd.CombinedOutput()
		if err == nil {
			e.log.Info("shutdown command accepted", logx.String("cmd", strings.Join(argv, " ")))
			return nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v (%s)", argv[0], err, strings.TrimSpace(string(out))))
	}
	return fmt.Errorf("all shutdown methods failed: %s", strings.Join(errs, "; "))
}

// powerOffLogind requests poweroff through the logind D-Bus API. PowerOff
// itself reports nothing back, so availability is established up front; once
// the connection is alive the request is assumed accepted.
func (e *systemExecutor) powerOffLogind(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := login1.New()
	if err != nil {
		return fmt.Errorf("connect logind: %w", err)
	}
	defer conn.Close()
	if !conn.Connected() {
		return errors.New("logind connection is not alive")
	}
	conn.PowerOff(false)
	e.log.Info("poweroff requested via logind")
	return nil
}
