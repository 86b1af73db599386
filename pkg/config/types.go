package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent soapy configuration stored as config.toml
// in the .soapy/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// StorageConfig holds conversation store settings.
type StorageConfig struct {
	// BasePath is the root of namespace/conversation directories. Empty
	// means <dotdir>/conversations.
	BasePath      string `toml:"base_path,omitempty"`
	DefaultBranch string `toml:"default_branch,omitempty"`

	// HistoryDepth bounds the commit walk when locating a branch point.
	HistoryDepth uint `toml:"history_depth,omitempty"`

	AuthorName  string `toml:"author_name,omitempty"`
	AuthorEmail string `toml:"author_email,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running API
// server. Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// EventStreamConfig selects where storage events are published.
type EventStreamConfig struct {
	// Provider is "nop" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of kafka brokers.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// configKey is a user-facing dotted key with its accessors on *Config.
// get returns "" for unset values.
type configKey struct {
	name string
	get  func(c *Config) string
	set  func(c *Config, v string) error
}

// configKeys lists every supported key in the order of the TOML layout.
var configKeys = []configKey{
	{
		name: "storage.base_path",
		get:  func(c *Config) string { return c.Storage.BasePath },
		set:  func(c *Config, v string) error { c.Storage.BasePath = v; return nil },
	},
	{
		name: "storage.default_branch",
		get:  func(c *Config) string { return c.Storage.DefaultBranch },
		set:  func(c *Config, v string) error { c.Storage.DefaultBranch = v; return nil },
	},
	{
		name: "storage.history_depth",
		get: func(c *Config) string {
			if c.Storage.HistoryDepth == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Storage.HistoryDepth), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for storage.history_depth: %w", err)
			}
			c.Storage.HistoryDepth = uint(n)
			return nil
		},
	},
	{
		name: "storage.author_name",
		get:  func(c *Config) string { return c.Storage.AuthorName },
		set:  func(c *Config, v string) error { c.Storage.AuthorName = v; return nil },
	},
	{
		name: "storage.author_email",
		get:  func(c *Config) string { return c.Storage.AuthorEmail },
		set:  func(c *Config, v string) error { c.Storage.AuthorEmail = v; return nil },
	},
	{
		name: "api.listen",
		get:  func(c *Config) string { return c.API.Listen },
		set:  func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	{
		name: "client.api_target",
		get:  func(c *Config) string { return c.Client.APITarget },
		set:  func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	{
		name: "eventstream.provider",
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case ProviderNop, ProviderKafka:
				c.EventStream.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for eventstream.provider: %q (available: %s, %s)", v, ProviderNop, ProviderKafka)
			}
		},
	},
	{
		name: "eventstream.brokers",
		get:  func(c *Config) string { return c.EventStream.Brokers },
		set:  func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	{
		name: "eventstream.topic",
		get:  func(c *Config) string { return c.EventStream.Topic },
		set:  func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}

func lookupKey(name string) (configKey, bool) {
	for _, k := range configKeys {
		if k.name == name {
			return k, true
		}
	}
	return configKey{}, false
}
