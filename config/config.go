// Package config handles .timber.toml user configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up in the user's home directory.
const FileName = ".timber.toml"

// Config holds user-level settings for the timber command.
type Config struct {
	Repl Repl `toml:"repl"`
	Run  Run  `toml:"run"`

	// Path is the file the configuration was loaded from, or empty when
	// running on defaults.
	Path string `toml:"-"`
}

// Repl configures the interactive session.
type Repl struct {
	Prompt      string `toml:"prompt"`
	ContPrompt  string `toml:"cont-prompt"`
	HistoryFile string `toml:"history-file"`
}

// Run configures program execution.
type Run struct {
	MaxSteps int `toml:"max-steps"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Repl: Repl{
			Prompt:      ">> ",
			ContPrompt:  ".. ",
			HistoryFile: ".timber_history",
		},
	}
}

// Load parses the configuration file at path, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.applyDefaults()
	c.Path = path
	return c, nil
}

// FindAndLoad loads the configuration from the user's home directory.
// A missing file is not an error; the defaults apply.
func FindAndLoad() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	path := filepath.Join(home, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// HistoryPath resolves the REPL history file against the home directory
// unless it is already absolute.
func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.Repl.HistoryFile) {
		return c.Repl.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.Repl.HistoryFile
	}
	return filepath.Join(home, c.Repl.HistoryFile)
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Repl.Prompt == "" {
		c.Repl.Prompt = d.Repl.Prompt
	}
	if c.Repl.ContPrompt == "" {
		c.Repl.ContPrompt = d.Repl.ContPrompt
	}
	if c.Repl.HistoryFile == "" {
		c.Repl.HistoryFile = d.Repl.HistoryFile
	}
}
