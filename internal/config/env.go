package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/example/labelkit/internal/brush"
)

// EnvPrefix prefixes every environment override, e.g. LABELKIT_THEME.
const EnvPrefix = "labelkit"

// Env lists the environment overrides. Empty values leave the file
// configuration untouched.
type Env struct {
	Theme      string `envconfig:"THEME"`
	SaveDir    string `envconfig:"SAVE_DIR"`
	LogMode    string `envconfig:"LOG_MODE"`
	BrushSize  int    `envconfig:"BRUSH_SIZE"`
	BrushShape string `envconfig:"BRUSH_SHAPE"`
	BrushMode  string `envconfig:"BRUSH_MODE"`
}

// LoadEnv reads the overrides from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("environment: %w", err)
	}
	return env, nil
}

// Apply overrides cfg with every value set in env.
func (env Env) Apply(cfg *Config) error {
	if env.Theme != "" {
		cfg.Theme = env.Theme
	}
	if env.SaveDir != "" {
		cfg.SaveDir = env.SaveDir
	}
	if env.LogMode != "" {
		cfg.LogMode = env.LogMode
	}
	if env.BrushSize != 0 {
		cfg.Brush.Size = brush.ClampSize(env.BrushSize)
	}
	if env.BrushShape != "" {
		s, err := brush.ParseShape(env.BrushShape)
		if err != nil {
			return fmt.Errorf("LABELKIT_BRUSH_SHAPE: %w", err)
		}
		cfg.Brush.Shape = s
	}
	if env.BrushMode != "" {
		m, err := brush.ParseMode(env.BrushMode)
		if err != nil {
			return fmt.Errorf("LABELKIT_BRUSH_MODE: %w", err)
		}
		cfg.Brush.Mode = m
	}
	return nil
}
