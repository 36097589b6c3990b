package terminal

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecallUpStopsAtOldest(t *testing.T) {
	r := NewRecall(10, []string{"one", "two", "three"})
	want := []string{"three", "two", "one", "one", "one"}
	for i, w := range want {
		got, ok := r.Prev()
		if !ok || got != w {
			t.Fatalf("step %d: expected %q, got %q (ok=%v)", i, w, got, ok)
		}
	}
}

func TestRecallDownReturnsToDraft(t *testing.T) {
	r := NewRecall(10, []string{"one", "two"})
	r.Prev()
	r.Prev()
	if got, _ := r.Next(); got != "two" {
		t.Fatalf("expected two, got %q", got)
	}
	if got, ok := r.Next(); !ok || got != "" {
		t.Fatalf("expected empty draft, got %q ok=%v", got, ok)
	}
	if _, ok := r.Next(); ok {
		t.Fatalf("expected no movement below draft")
	}
}

func TestRecallEmpty(t *testing.T) {
	r := NewRecall(10, nil)
	if _, ok := r.Prev(); ok {
		t.Fatalf("expected no recall on empty list")
	}
	if _, ok := r.Next(); ok {
		t.Fatalf("expected no recall on empty list")
	}
}

func TestRecallCapsAndCollapsesRepeats(t *testing.T) {
	r := NewRecall(3, nil)
	for _, cmd := range []string{"a", "a", "b", "c", "d"} {
		r.Push(cmd)
	}
	if diff := cmp.Diff([]string{"b", "c", "d"}, r.Items()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestRecallPushResetsCursor(t *testing.T) {
	r := NewRecall(10, []string{"one", "two"})
	r.Prev()
	r.Prev()
	r.Push("three")
	if got, _ := r.Prev(); got != "three" {
		t.Fatalf("expected newest after push, got %q", got)
	}
}

type mapKV map[string]string

func (m mapKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapKV) Put(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func TestRecallPersistence(t *testing.T) {
	kv := mapKV{}
	r := NewRecall(DefaultRecallLimit, nil)
	for i := 0; i < 60; i++ {
		r.Push(fmt.Sprintf("cmd-%d", i))
	}
	if err := SaveRecall(context.Background(), kv, r); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadRecall(context.Background(), kv, DefaultRecallLimit)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	items := loaded.Items()
	if len(items) != DefaultRecallLimit {
		t.Fatalf("expected %d items, got %d", DefaultRecallLimit, len(items))
	}
	if items[0] != "cmd-10" || items[len(items)-1] != "cmd-59" {
		t.Fatalf("unexpected bounds %q..%q", items[0], items[len(items)-1])
	}
}

func TestLoadRecallCorrupt(t *testing.T) {
	kv := mapKV{RecallKey: "not json"}
	r, err := LoadRecall(context.Background(), kv, 10)
	if err != nil {
		t.Fatalf("corrupt history should not error: %v", err)
	}
	if len(r.Items()) != 0 {
		t.Fatalf("expected empty recall, got %v", r.Items())
	}
}
