package config

import (
	"os"
	"path/filepath"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time or by -config
	SkipEnv      bool
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the configuration file, if any, and applies the environment
// overrides on top of it.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cfg, err = Parse(f); err != nil {
			return nil, err
		}
	}
	if l.SkipEnv {
		return cfg, nil
	}
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if err := env.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Candidates lists the paths GetConfigPath checks, in order.
func (l *Loader) Candidates() []string {
	var paths []string
	if l.OverridePath != "" {
		paths = append(paths, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, ".labelkitrc"))
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "labelkit", "config.rc"),
			filepath.Join(home, ".config", "labelkit", "labelkit.rc"),
		)
	}
	return paths
}

// GetConfigPath returns the first existing candidate, or empty string if
// none exists.
func (l *Loader) GetConfigPath() string {
	for _, p := range l.Candidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// SavePath is where "config save" writes: the override path when set,
// otherwise ~/.config/labelkit/config.rc.
func (l *Loader) SavePath() (string, error) {
	if l.OverridePath != "" {
		return l.OverridePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "labelkit", "config.rc"), nil
}
