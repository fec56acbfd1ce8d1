package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime options, populated from MESHTALK_* environment
// variables and optionally overridden by flags.
type Config struct {
	Home          string        // config directory, default $HOME/.meshtalk
	Nickname      string        `default:"anon"`
	DedupeMax     int           `split_words:"true" default:"1000"`
	ControlWindow time.Duration `split_words:"true" default:"3s"`
	MetricsPath   string        `split_words:"true"` // snapshot target, empty disables
}

// LoadConfig processes the environment and fills in the default home.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("meshtalk", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		cfg.Home = filepath.Join(dir, ".meshtalk")
	}
	return cfg, nil
}
