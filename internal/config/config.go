// Package config loads SoulSync settings that belong to the machine rather
// than to the journal: where data lives, how to log, and how to reach the
// chat completion API.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultChatBaseURL = "https://openrouter.ai/api/v1"
	DefaultChatModel   = "@preset/soul-sync"
	DefaultChatTimeout = 60 * time.Second
)

type Config struct {
	Data DataConfig `koanf:"data"`
	Log  LogConfig  `koanf:"log"`
	Chat ChatConfig `koanf:"chat"`
	UI   UIConfig   `koanf:"ui"`
}

type DataConfig struct {
	// DBPath is the SQLite file. Empty means the per-user default.
	DBPath string `koanf:"db_path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File receives log output. Empty means stderr.
	File string `koanf:"file"`
}

type ChatConfig struct {
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

type UIConfig struct {
	// SystemTheme is the theme used before the user picks one.
	SystemTheme string `koanf:"system_theme"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Chat: ChatConfig{
			BaseURL: DefaultChatBaseURL,
			Model:   DefaultChatModel,
			Timeout: DefaultChatTimeout,
		},
		UI: UIConfig{SystemTheme: "light"},
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = def.Chat.BaseURL
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = def.Chat.Model
	}
	if cfg.Chat.Timeout == 0 {
		cfg.Chat.Timeout = def.Chat.Timeout
	}
	if cfg.UI.SystemTheme == "" {
		cfg.UI.SystemTheme = def.UI.SystemTheme
	}
}

// Validate checks enums and ranges, reporting every problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be 'json' or 'console', got %q", c.Log.Format))
	}
	if c.Chat.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("chat.timeout must be > 0, got %s", c.Chat.Timeout))
	}
	if !strings.HasPrefix(c.Chat.BaseURL, "http://") && !strings.HasPrefix(c.Chat.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("chat.base_url must be an http(s) URL, got %q", c.Chat.BaseURL))
	}
	if c.UI.SystemTheme != "light" && c.UI.SystemTheme != "dark" {
		errs = append(errs, fmt.Errorf("ui.system_theme must be 'light' or 'dark', got %q", c.UI.SystemTheme))
	}
	return errors.Join(errs...)
}
