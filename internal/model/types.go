// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"time"
)

// Kind classifies a terminal entry for display.
type Kind string

const (
	KindCommand Kind = "command"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// HistoryEntry is one submitted command and its rendered result.
type HistoryEntry struct {
	ID        string
	Command   string
	Result    string
	Timestamp time.Time
	Kind      Kind
}

// Counters holds local analytics counters.
type Counters struct {
	Visits       int       `json:"visits"`
	Commands     int       `json:"commands"`
	Questions    int       `json:"questions"`
	SessionStart time.Time `json:"sessionStart"`
	LastCommand  string    `json:"lastCommand"`
}

// ChatMessage is a single turn of the chat widget.
type ChatMessage struct {
	ID           string        `json:"id"`
	Text         string        `json:"text"`
	IsUser       bool          `json:"isUser"`
	Timestamp    time.Time     `json:"timestamp"`
	ResponseTime time.Duration `json:"-"`
}

type chatMessageJSON struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	IsUser       bool      `json:"isUser"`
	Timestamp    time.Time `json:"timestamp"`
	ResponseTime int64     `json:"responseTime,omitempty"`
}

// MarshalJSON encodes ResponseTime in milliseconds, matching the chat endpoint.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(chatMessageJSON{
		ID:           m.ID,
		Text:         m.Text,
		IsUser:       m.IsUser,
		Timestamp:    m.Timestamp,
		ResponseTime: m.ResponseTime.Milliseconds(),
	})
}

// UnmarshalJSON reads ResponseTime as milliseconds.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var raw chatMessageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ChatMessage{
		ID:           raw.ID,
		Text:         raw.Text,
		IsUser:       raw.IsUser,
		Timestamp:    raw.Timestamp,
		ResponseTime: time.Duration(raw.ResponseTime) * time.Millisecond,
	}
	return nil
}

// Theme is the color scheme of the terminal.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Preferences are user display settings.
type Preferences struct {
	Theme Theme
	Zoom  int
	Sound bool
}

// EventTotal is a server-side aggregate for one analytics event.
type EventTotal struct {
	Event string `json:"event"`
	Count int64  `json:"count"`
}

// CommandUsage is a server-side aggregate for one terminal command.
type CommandUsage struct {
	Command    string    `json:"command"`
	Count      int64     `json:"count"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}
