// Package storeopts holds the storage flags shared by soapy commands and
// opens the conversation store they describe.
package storeopts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/config"
	"github.com/papercomputeco/soapy/pkg/dotdir"
	"github.com/papercomputeco/soapy/pkg/eventstream"
	"github.com/papercomputeco/soapy/pkg/eventstream/kafka"
	"github.com/papercomputeco/soapy/pkg/eventstream/nop"
	"github.com/papercomputeco/soapy/pkg/git"
	"github.com/papercomputeco/soapy/pkg/logger"
	"github.com/papercomputeco/soapy/pkg/storage"
	"github.com/papercomputeco/soapy/pkg/storage/gitrepo"
	"github.com/papercomputeco/soapy/pkg/storage/serial"
)

// storageFlags are the registry keys every store-opening command takes.
var storageFlags = []string{
	config.FlagBasePath,
	config.FlagDefaultBranch,
	config.FlagHistoryDepth,
	config.FlagAuthorName,
	config.FlagAuthorEmail,
	config.FlagEventProvider,
	config.FlagEventBrokers,
	config.FlagEventTopic,
}

// Options are the resolved storage settings of a command.
type Options struct {
	ConfigDir string
	Debug     bool

	BasePath      string
	DefaultBranch string
	HistoryDepth  uint
	AuthorName    string
	AuthorEmail   string

	EventProvider string
	EventBrokers  string
	EventTopic    string

	v *viper.Viper
}

// AddFlags registers the storage flags on cmd.
func AddFlags(cmd *cobra.Command, o *Options) {
	config.AddStringFlag(cmd, config.Flags, config.FlagBasePath, &o.BasePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagDefaultBranch, &o.DefaultBranch)
	config.AddUintFlag(cmd, config.Flags, config.FlagHistoryDepth, &o.HistoryDepth)
	config.AddStringFlag(cmd, config.Flags, config.FlagAuthorName, &o.AuthorName)
	config.AddStringFlag(cmd, config.Flags, config.FlagAuthorEmail, &o.AuthorEmail)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventProvider, &o.EventProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventBrokers, &o.EventBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventTopic, &o.EventTopic)
}

// Load resolves every option through the viper chain:
// flag > SOAPY_* env > config.toml > default. extraFlags are additional
// registry keys the command registered and wants bound.
func (o *Options) Load(cmd *cobra.Command, extraFlags ...string) error {
	o.ConfigDir, _ = cmd.Flags().GetString("config-dir")
	o.Debug, _ = cmd.Flags().GetBool("debug")

	v, err := config.InitViper(o.ConfigDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, append(storageFlags, extraFlags...))
	o.v = v

	o.BasePath = v.GetString("storage.base_path")
	o.DefaultBranch = v.GetString("storage.default_branch")
	o.HistoryDepth = v.GetUint("storage.history_depth")
	o.AuthorName = v.GetString("storage.author_name")
	o.AuthorEmail = v.GetString("storage.author_email")
	o.EventProvider = v.GetString("eventstream.provider")
	o.EventBrokers = v.GetString("eventstream.brokers")
	o.EventTopic = v.GetString("eventstream.topic")

	if o.BasePath == "" {
		o.BasePath, err = dotdir.NewManager().ConversationsDir(o.ConfigDir)
		if err != nil {
			return fmt.Errorf("resolving conversation store: %w", err)
		}
	}

	return nil
}

// Viper returns the viper instance of the last Load, for keys outside the
// storage section.
func (o *Options) Viper() *viper.Viper {
	return o.v
}

// Logger returns the command logger. Output goes to stderr so it never
// mixes with command output.
func (o *Options) Logger() *slog.Logger {
	return logger.New(
		logger.WithDebug(o.Debug),
		logger.WithPretty(cliui.IsTerminal(os.Stderr)),
		logger.WithWriter(os.Stderr),
	)
}

// Store is an opened conversation store.
type Store struct {
	// Driver serializes operations per conversation.
	storage.Driver

	// Resolver maps conversation ids to repository directories.
	Resolver *gitrepo.Resolver

	publisher eventstream.Publisher
}

// Close releases the driver and the event publisher.
func (s *Store) Close() error {
	return errors.Join(s.Driver.Close(), s.publisher.Close())
}

// Open builds the git backed store described by o.
func (o *Options) Open(log *slog.Logger) (*Store, error) {
	publisher, err := o.newPublisher(log)
	if err != nil {
		return nil, err
	}

	d, err := gitrepo.NewDriver(gitrepo.Config{
		BasePath:     o.BasePath,
		MainBranch:   o.DefaultBranch,
		HistoryDepth: int(o.HistoryDepth), //nolint:gosec // bounded by config validation
		Signature: git.Signature{
			Name:  o.AuthorName,
			Email: o.AuthorEmail,
		},
		Publisher: publisher,
		Logger:    log,
	})
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	log.Debug("opened conversation store",
		"base_path", o.BasePath,
		"event_provider", o.EventProvider,
	)

	return &Store{
		Driver:    serial.New(d),
		Resolver:  d.Resolver(),
		publisher: publisher,
	}, nil
}

func (o *Options) newPublisher(log *slog.Logger) (eventstream.Publisher, error) {
	switch o.EventProvider {
	case "", config.ProviderNop:
		return nop.NewPublisher(), nil

	case config.ProviderKafka:
		var brokers []string
		for _, b := range strings.Split(o.EventBrokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		publisher, err := kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   o.EventTopic,
			Logger:  log,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return publisher, nil

	default:
		return nil, fmt.Errorf("unknown event stream provider: %q", o.EventProvider)
	}
}

// Target picks the conversation and branch a command acts on. Explicit
// values win; otherwise the saved selection fills the gaps.
func (o *Options) Target(conversationID, branch string) (string, string, error) {
	if conversationID != "" {
		return conversationID, branch, nil
	}

	sel, err := dotdir.NewManager().LoadSelection(o.ConfigDir)
	if err != nil {
		return "", "", err
	}
	if sel == nil {
		return "", "", errors.New("no conversation selected; pass --conversation or run 'soapy use <id>'")
	}

	if branch == "" {
		branch = sel.Branch
	}
	return sel.ConversationID, branch, nil
}
