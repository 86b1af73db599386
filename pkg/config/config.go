package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/soapy/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the config version this build reads and writes.
	CurrentV = v0
)

// Configer reads and writes config.toml in a resolved .soapy/ directory.
type Configer struct {
	path string
}

// NewConfiger resolves the .soapy/ directory (see dotdir.Manager.Target)
// and returns a Configer for its config.toml. The file need not exist.
func NewConfiger(override string) (*Configer, error) {
	dir, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return &Configer{path: path}, nil
}

// ValidConfigKeys returns every supported key in TOML layout order.
func ValidConfigKeys() []string {
	names := make([]string, len(configKeys))
	for i, k := range configKeys {
		names[i] = k.name
	}
	return names
}

func IsValidConfigKey(key string) bool {
	_, ok := lookupKey(key)
	return ok
}

// GetTarget returns the path of config.toml.
func (c *Configer) GetTarget() string {
	return c.path
}

// LoadConfig reads config.toml. A missing file yields NewDefaultConfig, and
// keys the file leaves unset take their default.
func (c *Configer) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return NewDefaultConfig(), nil
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults copies the default of every key that cfg leaves unset.
func fillDefaults(cfg *Config) error {
	defaults := NewDefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	for _, k := range configKeys {
		if k.get(cfg) != "" {
			continue
		}
		def := k.get(defaults)
		if def == "" {
			continue
		}
		if err := k.set(cfg, def); err != nil {
			return fmt.Errorf("applying default for %s: %w", k.name, err)
		}
	}
	return nil
}

// SaveConfig writes cfg to config.toml, replacing its contents.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

// SetConfigValue sets one key in config.toml, keeping the others.
func (c *Configer) SetConfigValue(key string, value string) error {
	k, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	if err := k.set(cfg, value); err != nil {
		return err
	}
	return c.SaveConfig(cfg)
}

// GetConfigValue returns the effective value of key, falling back to its
// default.
func (c *Configer) GetConfigValue(key string) (string, error) {
	k, ok := lookupKey(key)
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}
	return k.get(cfg), nil
}

var presets = map[string]func() *Config{
	"local": NewDefaultConfig,
	"kafka": func() *Config {
		cfg := NewDefaultConfig()
		cfg.EventStream.Provider = ProviderKafka
		cfg.EventStream.Brokers = "localhost:9092"
		return cfg
	},
}

// PresetConfig returns the config written by `soapy init --preset name`.
// "local" keeps events in process; "kafka" publishes them to a broker on
// localhost.
func PresetConfig(name string) (*Config, error) {
	build, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}
	return build(), nil
}

func ValidPresetNames() []string {
	return []string{"local", "kafka"}
}

// ParseConfigTOML decodes config.toml contents. A version other than 0 or
// CurrentV is rejected.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}
	return cfg, nil
}
