// Package config holds the docufab configuration: where the database
// and generated documents live, and the locale and identity the
// template functions draw on.
package config

import "path/filepath"

// Config is the complete docufab configuration.
type Config struct {
	BaseDir   string      `yaml:"-"`          // directory of the config file, for relative paths
	Database  string      `yaml:"database"`   // path to the SQLite database file
	OutputDir string      `yaml:"output_dir"` // where generated projects land
	Locale    string      `yaml:"locale"`     // BCP 47 tag, e.g. "en-US"
	Currency  string      `yaml:"currency"`   // ISO 4217 code, e.g. "USD"
	User      UserConfig  `yaml:"user"`
	Watch     WatchConfig `yaml:"watch"`
}

// UserConfig identifies the person templates render on behalf of.
type UserConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// WatchConfig tunes the live re-render watcher.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// Defaults returns a config with sensible defaults applied.
func Defaults() *Config {
	return &Config{
		Database:  "docufab.db",
		OutputDir: "output",
		Locale:    "en-US",
		Currency:  "USD",
		Watch:     WatchConfig{DebounceMs: 300},
	}
}

// resolvePaths anchors relative paths at the config file's directory.
func (c *Config) resolvePaths() {
	if c.BaseDir == "" {
		return
	}
	if c.Database != "" && !filepath.IsAbs(c.Database) {
		c.Database = filepath.Join(c.BaseDir, c.Database)
	}
	if c.OutputDir != "" && !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
	}
}
