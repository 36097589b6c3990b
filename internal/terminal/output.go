// Package terminal implements the portfolio command interpreter.
package terminal

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/termfolio/internal/model"
)

// Output is the ordered list of rendered entries for a session.
type Output struct {
	entries []model.HistoryEntry
	now     func() time.Time
}

// NewOutput returns an empty output history.
func NewOutput() *Output {
	return &Output{now: time.Now}
}

// Append records a submitted command and its result.
func (o *Output) Append(command, result string, kind model.Kind) model.HistoryEntry {
	entry := model.HistoryEntry{
		ID:        uuid.NewString(),
		Command:   command,
		Result:    result,
		Timestamp: o.now(),
		Kind:      kind,
	}
	o.entries = append(o.entries, entry)
	return entry
}

// Clear drops all entries.
func (o *Output) Clear() {
	o.entries = nil
}

// Entries returns a copy of the recorded entries, oldest first.
func (o *Output) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(o.entries))
	copy(out, o.entries)
	return out
}

// Len returns the number of entries.
func (o *Output) Len() int {
	return len(o.entries)
}
