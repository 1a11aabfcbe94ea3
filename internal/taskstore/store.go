// Package taskstore persists the single scheduled-task record across process
// restarts.
//
// It supports two drivers:
//   - "file": a dependency-free key=value record file (default)
//   - "sqlite": a SQLite database file (optional build tag)
//
// Absence of a record means "no scheduled task": Load returns (nil, nil). A
// record that exists but cannot be decoded is backed up next to the original
// and then treated as absent, so a corrupt file never wedges startup.
package taskstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/duantianjun/qtshut/internal/task"
	logx "github.com/duantianjun/qtshut/pkg/logx"
)

// ErrFormat reports a stored record that could not be decoded. Drivers handle
// it internally (backup + treat as absent); it escapes only in logs.
var ErrFormat = errors.New("task record format error")

// ErrDisabled is returned by a driver that was compiled out.
var ErrDisabled = errors.New("task store disabled")

// Store is the persistence API the engine glue consumes.
type Store interface {
	// Load returns the stored descriptor, or (nil, nil) when none exists.
	Load(ctx context.Context) (*task.Descriptor, error)
	// Save replaces the stored descriptor.
	Save(ctx context.Context, d task.Descriptor) error
	// Clear removes the stored descriptor. No-op when none exists.
	Clear(ctx context.Context) error
	Close() error
}

// Config selects and configures the driver.
//
// If Driver is empty, "file" is assumed.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown task store driver: " + driver)
	}
}
