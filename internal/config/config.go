// Package config loads runtime settings from, in order of precedence:
// flags, TARJETAS_* environment variables, an optional YAML config file,
// then the built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "TARJETAS_"

// Config is the full runtime configuration.
type Config struct {
	// Listen is the local address the web UI binds to.
	Listen string `koanf:"listen" validate:"required,hostname_port"`
	// DB is the path of the SQLite file holding the persisted session slot.
	DB string `koanf:"db" validate:"required"`
	// DecksDir points at a directory of YAML deck files. Empty means the
	// built-in catalog.
	DecksDir string `koanf:"decks-dir"`
	// DecksRepo is a git URL to clone/pull deck files from. Takes precedence
	// over DecksDir when both are set.
	DecksRepo string `koanf:"decks-repo"`
	// ReposDir is where cloned deck repositories are cached.
	ReposDir string `koanf:"repos-dir" validate:"required"`
}

// Flags returns the flag set the config layer understands, pre-populated with
// defaults.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("tarjetas", pflag.ContinueOnError)
	f.String("listen", "127.0.0.1:8787", "Address for the local web UI")
	f.String("db", "tarjetas.db", "Path to the SQLite database file")
	f.String("decks-dir", "", "Directory of YAML deck files (empty: built-in decks)")
	f.String("decks-repo", "", "Git URL to load deck files from")
	f.String("repos-dir", "repos", "Cache directory for cloned deck repositories")
	f.String("config", "", "Path to a YAML config file")
	return f
}

// Load parses args and assembles the configuration.
func Load(args []string) (Config, error) {
	f := Flags()
	if err := f.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	k := koanf.New(".")

	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", "-")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
