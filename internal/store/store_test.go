package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "termfolio.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestKVRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "theme"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Put(ctx, "theme", `"light"`); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Put(ctx, "theme", `"dark"`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := st.Get(ctx, "theme")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != `"dark"` {
		t.Fatalf("expected overwritten value, got %s", value)
	}
	if err := st.Delete(ctx, "theme"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "theme"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestRecordEventAggregates(t *testing.T) {
	st := openTestStore(t)
	st.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	events := []struct{ event, command string }{
		{"visit", ""},
		{"command", "help"},
		{"command", "help"},
		{"command", "skills"},
		{"question", ""},
	}
	for _, e := range events {
		if err := st.RecordEvent(ctx, e.event, e.command); err != nil {
			t.Fatalf("record %s: %v", e.event, err)
		}
	}

	totals, err := st.ListEventTotals(ctx)
	if err != nil {
		t.Fatalf("list totals: %v", err)
	}
	got := map[string]int64{}
	for _, tot := range totals {
		got[tot.Event] = tot.Count
	}
	if got["visit"] != 1 || got["command"] != 3 || got["question"] != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}

	top, err := st.ListTopCommands(ctx, 1)
	if err != nil {
		t.Fatalf("list top: %v", err)
	}
	if len(top) != 1 || top[0].Command != "help" || top[0].Count != 2 {
		t.Fatalf("unexpected top commands: %+v", top)
	}
	if !top[0].LastUsedAt.Equal(st.now()) {
		t.Fatalf("unexpected last used time: %v", top[0].LastUsedAt)
	}
}
