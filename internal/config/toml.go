// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Terminal  TerminalConfig  `toml:"terminal"`
	Chat      ChatConfig      `toml:"chat"`
	Analytics AnalyticsConfig `toml:"analytics"`
	Server    ServerConfig    `toml:"server"`
	Shield    ShieldConfig    `toml:"shield"`
	Log       LogConfig       `toml:"log"`
}

// TerminalConfig maps terminal-related settings.
type TerminalConfig struct {
	Content     *string `toml:"content"`
	HistorySize *int    `toml:"history-size"`
	Theme       *string `toml:"theme"`
	Zoom        *int    `toml:"zoom"`
	Sound       *bool   `toml:"sound"`
}

// ChatConfig maps chat provider settings.
type ChatConfig struct {
	Provider    *string  `toml:"provider"`
	Endpoint    *string  `toml:"endpoint"`
	Model       *string  `toml:"model"`
	APIKey      *string  `toml:"api-key"`
	BaseURL     *string  `toml:"base-url"`
	MaxTokens   *int     `toml:"max-tokens"`
	Temperature *float64 `toml:"temperature"`
	TimeoutSec  *int     `toml:"timeout"`
}

// AnalyticsConfig maps analytics settings.
type AnalyticsConfig struct {
	Enabled  *bool   `toml:"enabled"`
	Endpoint *string `toml:"endpoint"`
}

// ServerConfig maps proxy server settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// ShieldConfig maps PromptShield settings.
type ShieldConfig struct {
	Rules *string `toml:"rules"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
