// Package config loads the TOML configuration file: the upstream command
// line, the log file path, and theme color overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/glintcli/glint"
)

// Config is the only persisted config file schema.
type Config struct {
	// Command is the upstream process argv. It must speak newline-delimited
	// JSON on stdin/stdout.
	Command []string `toml:"command"`
	// LogFile is the debug log destination. Empty disables logging.
	LogFile string `toml:"log_file"`
	// HistoryFile overrides the prompt history location.
	HistoryFile string `toml:"history_file"`
	Theme       Theme  `toml:"theme"`
	// Source is the path the config was loaded from.
	Source string `toml:"-"`
}

// Theme carries optional ANSI color index overrides. Unset fields keep
// the default.
type Theme struct {
	UserMsg  *int `toml:"user_msg"`
	Thinking *int `toml:"thinking"`
	ToolCall *int `toml:"tool_call"`
	Error    *int `toml:"error"`
	Success  *int `toml:"success"`
	Muted    *int `toml:"muted"`
	CodeBg   *int `toml:"code_bg"`
	Accent   *int `toml:"accent"`
}

func Default() Config {
	return Config{
		Command: []string{
			"claude",
			"--input-format", "stream-json",
			"--output-format", "stream-json",
			"--verbose",
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".glint", "config.toml")
}

// Load reads the config at path, falling back to DefaultPath. A missing
// file is not an error: defaults apply. A file that exists but does not
// parse is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(cfg.Command) == 0 {
		cfg.Command = Default().Command
	}
	return cfg, nil
}

// BuildTheme applies the configured overrides on top of the default theme.
func (c Config) BuildTheme() glint.Theme {
	theme := glint.DefaultTheme()
	override := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	override(&theme.UserMsg, c.Theme.UserMsg)
	override(&theme.Thinking, c.Theme.Thinking)
	override(&theme.ToolCall, c.Theme.ToolCall)
	override(&theme.Error, c.Theme.Error)
	override(&theme.Success, c.Theme.Success)
	override(&theme.Muted, c.Theme.Muted)
	override(&theme.CodeBg, c.Theme.CodeBg)
	override(&theme.Accent, c.Theme.Accent)
	return theme
}
