package terminal

import "strings"

// DefaultRecallLimit bounds the recall list.
const DefaultRecallLimit = 50

// Recall keeps previously entered commands for up/down navigation.
//
// The cursor ranges over [0, len(items)]; len(items) is the empty draft
// below the newest entry.
type Recall struct {
	items  []string
	limit  int
	cursor int
}

// NewRecall returns a recall list seeded with items, oldest first.
func NewRecall(limit int, items []string) *Recall {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}
	r := &Recall{limit: limit}
	for _, item := range items {
		r.push(item)
	}
	r.Reset()
	return r
}

// Push records a submitted command and resets navigation. Empty commands and
// immediate repeats are ignored.
func (r *Recall) Push(cmd string) {
	r.push(cmd)
	r.Reset()
}

func (r *Recall) push(cmd string) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return
	}
	if n := len(r.items); n > 0 && r.items[n-1] == cmd {
		return
	}
	r.items = append(r.items, cmd)
	if len(r.items) > r.limit {
		r.items = append([]string(nil), r.items[len(r.items)-r.limit:]...)
	}
}

// Prev moves toward older commands. It stops at the oldest entry.
func (r *Recall) Prev() (string, bool) {
	if len(r.items) == 0 {
		return "", false
	}
	if r.cursor > 0 {
		r.cursor--
	}
	return r.items[r.cursor], true
}

// Next moves toward newer commands. Moving past the newest returns the empty
// draft.
func (r *Recall) Next() (string, bool) {
	if r.cursor >= len(r.items) {
		return "", false
	}
	r.cursor++
	if r.cursor == len(r.items) {
		return "", true
	}
	return r.items[r.cursor], true
}

// Reset moves the cursor back to the draft position.
func (r *Recall) Reset() {
	r.cursor = len(r.items)
}

// Clear forgets all commands.
func (r *Recall) Clear() {
	r.items = nil
	r.cursor = 0
}

// Items returns a copy of the stored commands, oldest first.
func (r *Recall) Items() []string {
	out := make([]string, len(r.items))
	copy(out, r.items)
	return out
}
