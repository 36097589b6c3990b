// Package analytics counts visits, commands and questions locally and
// mirrors each event to a remote aggregate endpoint.
package analytics

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/termfolio/internal/model"
)

// StorageKey is where counters are persisted.
const StorageKey = "analytics"

// Path is the proxy endpoint for analytics events.
const Path = "/api/analytics"

// Event names.
const (
	EventVisit    = "visit"
	EventCommand  = "command"
	EventQuestion = "question"
)

const mirrorTimeout = 5 * time.Second

// KV is the key/value storage counters persist to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Poster sends an event to the remote endpoint.
type Poster interface {
	PostJSON(ctx context.Context, path string, in, out any) error
}

// Payload is the JSON body of POST /api/analytics.
type Payload struct {
	Event    string          `json:"event"`
	Command  string          `json:"command,omitempty"`
	Counters *model.Counters `json:"counters,omitempty"`
}

// Tracker owns the counters of one terminal session.
type Tracker struct {
	mu       sync.Mutex
	counters model.Counters
	kv       KV
	remote   Poster
	logger   *zap.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewTracker loads counters from kv. remote may be nil to disable mirroring.
// A corrupt or unreadable record starts from zero.
func NewTracker(ctx context.Context, kv KV, remote Poster, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{kv: kv, remote: remote, logger: logger, now: time.Now}
	if kv == nil {
		return t
	}
	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		logger.Warn("failed to load analytics counters", zap.Error(err))
		return t
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &t.counters); err != nil {
			logger.Debug("discarding corrupt analytics counters", zap.Error(err))
			t.counters = model.Counters{}
		}
	}
	return t
}

// Visit records a new session.
func (t *Tracker) Visit(ctx context.Context) {
	t.record(ctx, EventVisit, "", func(c *model.Counters) {
		c.Visits++
		c.SessionStart = t.now()
	})
}

// Command records an executed command by name.
func (t *Tracker) Command(ctx context.Context, name string) {
	t.record(ctx, EventCommand, name, func(c *model.Counters) {
		c.Commands++
		c.LastCommand = name
	})
}

// Question records a question sent to the assistant.
func (t *Tracker) Question(ctx context.Context) {
	t.record(ctx, EventQuestion, "", func(c *model.Counters) {
		c.Questions++
	})
}

// Counters returns a snapshot.
func (t *Tracker) Counters() model.Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters
}

// Close waits for in-flight mirror requests.
func (t *Tracker) Close() {
	t.wg.Wait()
}

func (t *Tracker) record(ctx context.Context, event, command string, apply func(*model.Counters)) {
	t.mu.Lock()
	apply(&t.counters)
	snapshot := t.counters
	t.mu.Unlock()

	t.persist(ctx, snapshot)
	t.mirror(Payload{Event: event, Command: command, Counters: &snapshot})
}

func (t *Tracker) persist(ctx context.Context, c model.Counters) {
	if t.kv == nil {
		return
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.logger.Warn("failed to encode analytics counters", zap.Error(err))
		return
	}
	if err := t.kv.Put(ctx, StorageKey, string(data)); err != nil {
		t.logger.Warn("failed to save analytics counters", zap.Error(err))
	}
}

// mirror posts the event in the background. Failures are logged and dropped.
func (t *Tracker) mirror(p Payload) {
	if t.remote == nil {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := t.remote.PostJSON(ctx, Path, p, nil); err != nil {
			t.logger.Debug("analytics mirror failed", zap.String("event", p.Event), zap.Error(err))
		}
	}()
}
