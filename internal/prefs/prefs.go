// Package prefs persists display preferences as schema-less JSON values.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/verte-zerg/termfolio/internal/model"
)

// Storage keys.
const (
	KeyTheme = "theme"
	KeyZoom  = "zoom"
	KeySound = "sound"
)

// KV is the key/value storage preferences live in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() model.Preferences {
	return model.Preferences{
		Theme: model.ThemeDark,
		Zoom:  DefaultZoom,
		Sound: false,
	}
}

// Load reads preferences from kv. Missing or unparsable values fall back to
// defaults without error; only storage failures are reported.
func Load(ctx context.Context, kv KV) (model.Preferences, error) {
	p := Defaults()

	var theme string
	if err := readJSON(ctx, kv, KeyTheme, &theme); err != nil {
		return p, err
	}
	if t, ok := ParseTheme(theme); ok {
		p.Theme = t
	}

	zoom := 0
	if err := readJSON(ctx, kv, KeyZoom, &zoom); err != nil {
		return p, err
	}
	if ValidZoom(zoom) {
		p.Zoom = zoom
	}

	var sound *bool
	if err := readJSON(ctx, kv, KeySound, &sound); err != nil {
		return p, err
	}
	if sound != nil {
		p.Sound = *sound
	}
	return p, nil
}

// Save writes all preference keys.
func Save(ctx context.Context, kv KV, p model.Preferences) error {
	values := map[string]any{
		KeyTheme: string(p.Theme),
		KeyZoom:  p.Zoom,
		KeySound: p.Sound,
	}
	for _, key := range []string{KeyTheme, KeyZoom, KeySound} {
		data, err := json.Marshal(values[key])
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if err := kv.Put(ctx, key, string(data)); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return nil
}

// ParseTheme maps a name to a theme.
func ParseTheme(name string) (model.Theme, bool) {
	switch model.Theme(name) {
	case model.ThemeDark:
		return model.ThemeDark, true
	case model.ThemeLight:
		return model.ThemeLight, true
	default:
		return "", false
	}
}

// ToggleTheme returns the other theme.
func ToggleTheme(t model.Theme) model.Theme {
	if t == model.ThemeLight {
		return model.ThemeDark
	}
	return model.ThemeLight
}

// readJSON decodes the value at key into target. A parse failure leaves
// target untouched.
func readJSON(ctx context.Context, kv KV, key string, target any) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	// Unparsable values count as absent.
	_ = json.Unmarshal([]byte(raw), target)
	return nil
}
