//go:build sqlite
// +build sqlite

package taskstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/duantianjun/qtshut/internal/task"
	logx "github.com/duantianjun/qtshut/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// sqliteStore keeps the record in a single-row table. There is only ever one
// scheduled task, so the row id is fixed.
type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Load(ctx context.Context) (*task.Descriptor, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	var (
		kind       string
		targetTime sql.NullString
		dailyTime  sql.NullString
		enabled    bool
		createdAt  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, target_time, daily_time, enabled, created_at FROM scheduled_task WHERE id = 1`,
	).Scan(&kind, &targetTime, &dailyTime, &enabled, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task record: %w", err)
	}

	d, err := decodeRow(kind, targetTime, dailyTime, enabled, createdAt)
	if err != nil {
		// Same recovery contract as the file driver: keep the bad row aside
		// (it stays queryable in the backup table) and treat it as absent.
		if _, berr := s.db.ExecContext(ctx,
			`INSERT INTO scheduled_task_corrupt(kind, target_time, daily_time, enabled, created_at, noted_at)
			 SELECT kind, target_time, daily_time, enabled, created_at, ? FROM scheduled_task WHERE id = 1`,
			time.Now().Format(time.RFC3339),
		); berr == nil {
			_, _ = s.db.ExecContext(ctx, `DELETE FROM scheduled_task WHERE id = 1`)
		}
		s.log.Warn("task record corrupt; treating as absent", logx.Err(fmt.Errorf("%w: %v", ErrFormat, err)))
		return nil, nil
	}
	return d, nil
}

func (s *sqliteStore) Save(ctx context.Context, d task.Descriptor) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if err := d.Validate(); err != nil {
		return err
	}
	var target, daily any
	if d.TargetTime != nil {
		target = d.TargetTime.Format(time.RFC3339)
	}
	if d.DailyTime != nil {
		daily = d.DailyTime.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_task(id, kind, target_time, daily_time, enabled, created_at)
		 VALUES(1,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   kind=excluded.kind, target_time=excluded.target_time,
		   daily_time=excluded.daily_time, enabled=excluded.enabled,
		   created_at=excluded.created_at`,
		d.Kind.String(), target, daily, d.Enabled, d.CreatedAt.Format(time.RFC3339),
	)
	return err
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_task WHERE id = 1`)
	return err
}

func decodeRow(kind string, target, daily sql.NullString, enabled bool, createdAt string) (*task.Descriptor, error) {
	d := task.Descriptor{Kind: task.Kind(kind), Enabled: enabled}
	if !d.Kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	if target.Valid && target.String != "" {
		t, err := time.Parse(time.RFC3339, target.String)
		if err != nil {
			return nil, fmt.Errorf("target_time: %w", err)
		}
		d.TargetTime = &t
	}
	if daily.Valid && daily.String != "" {
		tod, err := task.ParseTimeOfDay(daily.String)
		if err != nil {
			return nil, fmt.Errorf("daily_time: %w", err)
		}
		d.DailyTime = &tod
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	d.CreatedAt = t
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
