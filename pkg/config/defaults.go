package config

// Event stream providers.
const (
	ProviderNop   = "nop"
	ProviderKafka = "kafka"
)

const (
	defaultBranch       = "main"
	defaultHistoryDepth = 1000
	defaultAuthorName   = "soapy"
	defaultAuthorEmail  = "soapy@localhost"

	defaultAPIListen       = ":8090"
	defaultClientAPITarget = "http://localhost:8090"

	defaultEventTopic = "soapy.items"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			DefaultBranch: defaultBranch,
			HistoryDepth:  defaultHistoryDepth,
			AuthorName:    defaultAuthorName,
			AuthorEmail:   defaultAuthorEmail,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		EventStream: EventStreamConfig{
			Provider: ProviderNop,
			Topic:    defaultEventTopic,
		},
	}
}
