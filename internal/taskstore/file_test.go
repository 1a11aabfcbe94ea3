package taskstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/duantianjun/qtshut/internal/task"
	logx "github.com/duantianjun/qtshut/pkg/logx"
)

func newFileStore(t *testing.T) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "task_record")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	st, _ := newFileStore(t)
	ctx := context.Background()

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absent record, got %+v", got)
	}

	now := time.Date(2025, 6, 15, 21, 0, 0, 0, time.Local)
	want := task.Once(now.Add(time.Hour), now)
	if err := st.Save(ctx, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err = st.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got == nil {
		t.Fatal("expected record after save")
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	// Saving again replaces the record.
	daily := task.Daily(task.TimeOfDay{Hour: 22}, now)
	if err := st.Save(ctx, daily); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err = st.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Kind != task.KindDaily {
		t.Fatalf("Kind = %v, want daily", got.Kind)
	}
}

func TestFileStoreClear(t *testing.T) {
	t.Parallel()
	st, path := newFileStore(t)
	ctx := context.Background()

	// Clearing an absent record is a no-op.
	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear on absent record error: %v", err)
	}

	now := time.Now()
	if err := st.Save(ctx, task.Once(now.Add(time.Hour), now)); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("record file still exists after Clear: %v", err)
	}
	got, err := st.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("Load after Clear = (%+v, %v), want (nil, nil)", got, err)
	}
}

func TestFileStoreCorruptRecordBackedUp(t *testing.T) {
	t.Parallel()
	st, path := newFileStore(t)
	ctx := context.Background()

	if err := os.WriteFile(path, []byte("not = a\nvalid = record\n"), 0o600); err != nil {
		t.Fatalf("write corrupt record: %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != nil {
		t.Fatalf("corrupt record should read as absent, got %+v", got)
	}

	backup := path + ".corrupted.bak"
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("expected corrupt backup at %s: %v", backup, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("corrupt original should have been removed")
	}

	// The store is usable again after the backup.
	now := time.Now()
	if err := st.Save(ctx, task.Once(now.Add(time.Hour), now)); err != nil {
		t.Fatalf("Save after corrupt recovery error: %v", err)
	}
	if got, err := st.Load(ctx); err != nil || got == nil {
		t.Fatalf("Load after recovery = (%+v, %v)", got, err)
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("expected error for missing path")
	}
	if _, err := Open(Config{Driver: "postgres", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
