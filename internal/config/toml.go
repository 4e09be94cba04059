// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Extreme  ExtremeConfig  `toml:"extreme"`
	Verse    VerseConfig    `toml:"verse"`
}

// PracticeConfig maps settings shared by the practice modes.
type PracticeConfig struct {
	LineWidth  *int     `toml:"line-width"`
	Lines      *int     `toml:"lines"`
	WordsFile  *string  `toml:"words-file"`
	WordFilter *string  `toml:"word-filter"`
	CapsPct    *float64 `toml:"caps"`
	PunctPct   *float64 `toml:"punct"`
	PunctSet   *string  `toml:"punct-set"`
	Journal    *string  `toml:"journal"`
}

// ExtremeConfig maps the extreme mode settings.
type ExtremeConfig struct {
	WordsFile *string `toml:"words-file"`
	Lines     *int    `toml:"lines"`
	Header    *string `toml:"header"`
}

// VerseConfig maps the verse mode settings.
type VerseConfig struct {
	Command *string `toml:"command"`
}

// Template is written by `termtype config` when no file exists yet.
const Template = `# termtype configuration

[practice]
# line-width = 50
# lines = 20
# words-file = ""
# word-filter = "none"   # none or ascii
# caps = 0.0
# punct = 0.0
# punct-set = ".,;:!?"
# journal = ""

[extreme]
# words-file = ""
# lines = 50
# header = "Name und Vorname? Grzg...."

[verse]
# command = "kjv"
`

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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// EnsureConfig writes Template to path unless a file is already there.
func EnsureConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
