// Package gitrepo implements storage.Driver on top of one git repository
// per conversation. Items are files named NNNN-<kind>.md, each introduced
// by exactly one commit whose subject encodes its sequence number.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/eventstream"
	"github.com/papercomputeco/soapy/pkg/eventstream/nop"
	"github.com/papercomputeco/soapy/pkg/git"
	"github.com/papercomputeco/soapy/pkg/logger"
	"github.com/papercomputeco/soapy/pkg/storage"
)

const (
	metadataFile      = ".soapy-metadata.json"
	branchCacheFile   = ".soapy-branches.json"
	sequenceCacheFile = ".soapy-sequence.json"
	ignoreFile        = ".gitignore"
	filesDir          = "files"

	defaultHistoryDepth = 1000
)

// sideCacheFiles are never committed and must survive checkouts.
var sideCacheFiles = []string{branchCacheFile, sequenceCacheFile}

// Config configures the git backed driver.
type Config struct {
	// BasePath is the root under which namespace/conversation directories
	// are created.
	BasePath string

	// MainBranch names the default branch of new conversations.
	// Defaults to conversation.DefaultMainBranch.
	MainBranch string

	// HistoryDepth bounds the commit walk when locating a branch point.
	// Defaults to 1000.
	HistoryDepth int

	// Signature is the commit identity. Defaults to git.DefaultSignature.
	Signature git.Signature

	// Publisher receives an event for every mutation. Defaults to a no-op.
	Publisher eventstream.Publisher

	Logger *slog.Logger
}

// Driver is the git backed storage engine. It does no locking of its own:
// callers must serialize operations per conversation.
type Driver struct {
	resolver   *Resolver
	mainBranch string
	depth      int
	sig        git.Signature
	publisher  eventstream.Publisher
	logger     *slog.Logger
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates a Driver rooted at c.BasePath.
func NewDriver(c Config) (*Driver, error) {
	if c.BasePath == "" {
		return nil, errors.New("base path is required")
	}
	if c.MainBranch == "" {
		c.MainBranch = conversation.DefaultMainBranch
	}
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = defaultHistoryDepth
	}
	if c.Signature.Name == "" || c.Signature.Email == "" {
		c.Signature = git.DefaultSignature
	}
	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	return &Driver{
		resolver:   NewResolver(c.BasePath),
		mainBranch: c.MainBranch,
		depth:      c.HistoryDepth,
		sig:        c.Signature,
		publisher:  c.Publisher,
		logger:     c.Logger,
	}, nil
}

// Resolver exposes the id to directory mapping.
func (d *Driver) Resolver() *Resolver {
	return d.resolver
}

// Close is a no-op; the publisher belongs to whoever constructed it.
func (d *Driver) Close() error {
	return nil
}

// openConversation opens the repository for id or reports NotFound.
func (d *Driver) openConversation(id string) (*git.Repo, string, error) {
	dir := d.resolver.Resolve(id)
	if !git.IsRepository(dir) {
		return nil, "", storage.NotFoundError{Resource: "conversation", ID: id}
	}

	repo, err := git.Open(dir, d.sig)
	if err != nil {
		return nil, "", err
	}

	return repo, dir, nil
}

// mainBranchOf returns the main branch recorded in the descriptor, falling
// back to the configured default.
func (d *Driver) mainBranchOf(dir string) string {
	desc, err := readDescriptor(dir)
	if err != nil || desc.MainBranch == "" {
		return d.mainBranch
	}
	return desc.MainBranch
}

// selectBranch makes branch the checked-out branch if it isn't already and
// returns the name of the branch now active. An empty branch keeps
// whatever is checked out.
func (d *Driver) selectBranch(repo *git.Repo, id, branch string) (string, error) {
	current, err := repo.CurrentBranch()
	if err != nil {
		return "", err
	}
	if branch == "" || branch == current {
		return current, nil
	}

	exists, err := repo.BranchExists(branch)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", storage.NotFoundError{Resource: "branch", ID: branch}
	}

	if err := repo.Checkout(branch, sideCacheFiles...); err != nil {
		return "", err
	}

	d.logger.Debug("checked out branch", "conversation_id", id, "from", current, "to", branch)
	return branch, nil
}

func (d *Driver) publish(ctx context.Context, event *eventstream.Event) {
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish event",
			"event_type", event.EventType,
			"conversation_id", event.ConversationID,
			"error", err,
		)
	}
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("storage operation canceled: %w", err)
	}
	return nil
}
