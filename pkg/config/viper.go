package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/soapy/pkg/dotdir"
)

// envPrefix prefixes environment overrides: storage.base_path is read from
// SOAPY_STORAGE_BASE_PATH.
const envPrefix = "SOAPY"

// InitViper returns a viper instance resolving every config key through
// the chain, highest first:
//
//  1. CLI flags, once bound with BindRegisteredFlags
//  2. SOAPY_* environment variables
//  3. config.toml in the .soapy/ directory resolved from configDir
//  4. NewDefaultConfig
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	v.SetConfigName(strings.TrimSuffix(configFile, ".toml"))
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers the default of every config key. Values come
// from the key registry applied to NewDefaultConfig, so a new key only needs
// a registry entry.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, k := range configKeys {
		v.SetDefault(k.name, k.get(d))
	}
}
