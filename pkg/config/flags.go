package config

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag describes one CLI flag and the config key it overrides. Commands
// define flags from the shared registry so a flag has the same name,
// shorthand and help text everywhere.
type Flag struct {
	Name      string
	Shorthand string
	ViperKey  string

	// Description is the --help text.
	Description string
}

// FlagSet maps registry keys to flags.
type FlagSet map[string]Flag

// Registry keys of Flags.
const (
	FlagBasePath      = "base-path"
	FlagDefaultBranch = "default-branch"
	FlagHistoryDepth  = "history-depth"
	FlagAuthorName    = "author-name"
	FlagAuthorEmail   = "author-email"
	FlagAPIListen     = "listen"
	FlagAPITarget     = "api-target"
	FlagEventProvider = "eventstream-provider"
	FlagEventBrokers  = "eventstream-brokers"
	FlagEventTopic    = "eventstream-topic"
)

// Flags is the registry shared by every soapy command.
var Flags = FlagSet{
	FlagBasePath:      {Name: "base-path", Shorthand: "b", ViperKey: "storage.base_path", Description: "Root directory of the conversation store (default: <dotdir>/conversations)"},
	FlagDefaultBranch: {Name: "default-branch", ViperKey: "storage.default_branch", Description: "Main branch name for new conversations"},
	FlagHistoryDepth:  {Name: "history-depth", ViperKey: "storage.history_depth", Description: "Commits searched when locating a branch point"},
	FlagAuthorName:    {Name: "author-name", ViperKey: "storage.author_name", Description: "Commit author name"},
	FlagAuthorEmail:   {Name: "author-email", ViperKey: "storage.author_email", Description: "Commit author email"},
	FlagAPIListen:     {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagAPITarget:     {Name: "api-target", Shorthand: "a", ViperKey: "client.api_target", Description: "Soapy API server URL"},
	FlagEventProvider: {Name: "eventstream-provider", ViperKey: "eventstream.provider", Description: "Event publisher: nop or kafka"},
	FlagEventBrokers:  {Name: "eventstream-brokers", ViperKey: "eventstream.brokers", Description: "Comma separated kafka brokers"},
	FlagEventTopic:    {Name: "eventstream-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for storage events"},
}

// AddStringFlag defines the string flag registered under key, with its
// default taken from NewDefaultConfig. Unknown keys are ignored.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	if f, ok := fs[key]; ok {
		cmd.Flags().StringVarP(target, f.Name, f.Shorthand, defaultString(f.ViperKey), f.Description)
	}
}

// AddUintFlag is AddStringFlag for numeric keys.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, key string, target *uint) {
	if f, ok := fs[key]; ok {
		cmd.Flags().UintVarP(target, f.Name, f.Shorthand, defaultUint(f.ViperKey), f.Description)
	}
}

// BindRegisteredFlags connects the flags of cmd named by keys to their viper
// keys, putting them at the top of the resolution chain. Call it after
// InitViper and after the flags are defined.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		f, ok := fs[key]
		if !ok {
			continue
		}
		if pf := cmd.Flags().Lookup(f.Name); pf != nil {
			_ = v.BindPFlag(f.ViperKey, pf)
		}
	}
}

// defaultString returns the NewDefaultConfig value of a config key.
func defaultString(viperKey string) string {
	k, ok := lookupKey(viperKey)
	if !ok {
		return ""
	}
	return k.get(NewDefaultConfig())
}

// defaultUint is defaultString for numeric keys. Unset reads as 0.
func defaultUint(viperKey string) uint {
	n, err := strconv.ParseUint(defaultString(viperKey), 10, 0)
	if err != nil {
		return 0
	}
	return uint(n)
}
