package terminal

import (
	"context"
	"encoding/json"
	"fmt"
)

// RecallKey is the storage key of the persisted recall list.
const RecallKey = "command_history"

// KV is the key/value storage the recall list persists to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// LoadRecall restores the recall list. A corrupt value yields an empty list.
func LoadRecall(ctx context.Context, kv KV, limit int) (*Recall, error) {
	raw, ok, err := kv.Get(ctx, RecallKey)
	if err != nil {
		return NewRecall(limit, nil), fmt.Errorf("failed to read command history: %w", err)
	}
	if !ok {
		return NewRecall(limit, nil), nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return NewRecall(limit, nil), nil
	}
	return NewRecall(limit, items), nil
}

// SaveRecall persists the recall list.
func SaveRecall(ctx context.Context, kv KV, r *Recall) error {
	data, err := json.Marshal(r.Items())
	if err != nil {
		return fmt.Errorf("failed to encode command history: %w", err)
	}
	if err := kv.Put(ctx, RecallKey, string(data)); err != nil {
		return fmt.Errorf("failed to save command history: %w", err)
	}
	return nil
}
