package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/memdir/pkg/memdir"
)

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config file")
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	ChunkSize int    `json:"chunk_size,omitempty"` //nolint:tagliatelle // snake_case for config file
	TempExt   string `json:"temp_ext,omitempty"`   //nolint:tagliatelle // snake_case for config file
	LogLevel  string `json:"log_level,omitempty"`  //nolint:tagliatelle // snake_case for config file

	// Resolved (computed, not serialized)
	WorkDir string        `json:"-"`
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global   string // Path to global config if loaded, empty otherwise
	Explicit string // Path to --config file if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize: memdir.DefaultChunkSize,
		TempExt:   memdir.DefaultTempExt,
		LogLevel:  "warn",
	}
}

// StoreOptions converts the config into [memdir.Options].
func (c Config) StoreOptions(logger *slog.Logger) memdir.Options {
	return memdir.Options{
		ChunkSize: c.ChunkSize,
		TempExt:   c.TempExt,
		Logger:    logger,
	}
}

// Level returns the parsed log level. Call after [LoadConfig] validated it.
func (c Config) Level() slog.Level {
	var level slog.Level

	_ = level.UnmarshalText([]byte(c.LogLevel))

	return level
}

// globalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/memdir/config.json if set, otherwise
// ~/.config/memdir/config.json. Returns "" if neither can be determined.
func globalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "memdir", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "memdir", "config.json")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/memdir/config.json or $XDG_CONFIG_HOME/memdir/config.json)
// 3. Explicit config file via configPath (if non-empty, must exist)
// 4. CLI overrides (non-zero fields of overrides).
func LoadConfig(workDir, configPath string, overrides Config, env map[string]string) (Config, error) {
	cfg := DefaultConfig()
	cfg.WorkDir = workDir

	if path := globalConfigPath(env); path != "" {
		globalCfg, loaded, err := loadConfigFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, globalCfg)
			cfg.Sources.Global = path
		}
	}

	if configPath != "" {
		path := configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		explicitCfg, _, err := loadConfigFile(path, true)
		if err != nil {
			return Config{}, err
		}

		cfg = mergeConfig(cfg, explicitCfg)
		cfg.Sources.Explicit = path
	}

	cfg = mergeConfig(cfg, overrides)

	err := validateConfig(cfg)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// loadConfigFile loads a config file. If mustExist is false, a missing file
// returns a zero config and loaded=false.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}

			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s: %w", errConfigFileRead, path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(strings.NewReader(string(standardized)))
	dec.DisallowUnknownFields()

	var cfg Config

	err = dec.Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if cfg.ChunkSize < 0 {
		return Config{}, fmt.Errorf("chunk_size must be positive, got %d", cfg.ChunkSize)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.ChunkSize != 0 {
		base.ChunkSize = overlay.ChunkSize
	}

	if overlay.TempExt != "" {
		base.TempExt = overlay.TempExt
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", cfg.ChunkSize)
	}

	if strings.ContainsAny(cfg.TempExt, "./") {
		return fmt.Errorf("temp_ext must not contain '.' or '/', got %q", cfg.TempExt)
	}

	var level slog.Level

	err := level.UnmarshalText([]byte(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	return nil
}
