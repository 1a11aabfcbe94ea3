package taskstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/duantianjun/qtshut/internal/task"
	logx "github.com/duantianjun/qtshut/pkg/logx"
)

// fileStore keeps the record in a single key=value text file. Writes are
// atomic (tmp + rename) so a crash mid-save never leaves a torn record.
type fileStore struct {
	log  logx.Logger
	path string

	mu sync.Mutex
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := cfg.Path
	if path == "" {
		return nil, errors.New("taskstore.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileStore{log: log, path: path}, nil
}

func (s *fileStore) Load(ctx context.Context) (*task.Descriptor, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task record: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}

	d, err := task.Decode(b)
	if err != nil {
		// Preserve the corrupt record for inspection, then behave as if no
		// record exists.
		backup := s.backupCorruptLocked()
		s.log.Warn("task record corrupt; treating as absent",
			logx.String("path", s.path),
			logx.String("backup", backup),
			logx.Err(fmt.Errorf("%w: %v", ErrFormat, err)),
		)
		return nil, nil
	}
	return &d, nil
}

func (s *fileStore) Save(ctx context.Context, d task.Descriptor) error {
	_ = ctx
	b, err := task.Encode(d)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write task record: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit task record: %w", err)
	}
	s.log.Debug("task record saved", logx.String("path", s.path), logx.String("kind", d.Kind.String()))
	return nil
}

func (s *fileStore) Clear(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove task record: %w", err)
	}
	s.log.Debug("task record cleared", logx.String("path", s.path))
	return nil
}

func (s *fileStore) Close() error { return nil }

// backupCorruptLocked copies the unreadable record aside. Call with mu held.
func (s *fileStore) backupCorruptLocked() string {
	backup := s.path + ".corrupted.bak"
	b, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	if err := os.WriteFile(backup, b, 0o600); err != nil {
		return ""
	}
	_ = os.Remove(s.path)
	return backup
}
