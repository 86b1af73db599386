package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/git"
	"github.com/papercomputeco/soapy/pkg/storage"
)

// ignoreRules keeps the side caches out of every commit.
var ignoreRules = strings.Join(sideCacheFiles, "\n") + "\n"

func readDescriptor(dir string) (*conversation.Conversation, error) {
	desc := &conversation.Conversation{}
	if err := readJSONFile(filepath.Join(dir, metadataFile), desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// CreateConversation initializes the repository, writes the ignore rules
// and descriptor, and records them in one initial commit. A failed create
// leaves no repository behind.
func (d *Driver) CreateConversation(ctx context.Context, conv *conversation.Conversation) (err error) {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if conv == nil {
		return errors.New("conversation is nil")
	}
	if err := ValidateID(conv.ID); err != nil {
		return err
	}

	dir := d.resolver.Resolve(conv.ID)
	if git.IsRepository(dir) {
		return fmt.Errorf("conversation %s: %w", conv.ID, storage.ErrAlreadyExists)
	}

	_, statErr := os.Stat(dir)
	created := os.IsNotExist(statErr)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating conversation directory: %w", err)
	}
	defer func() {
		if err != nil {
			d.discardPartial(dir, created)
		}
	}()

	desc := *conv
	if desc.MainBranch == "" {
		desc.MainBranch = d.mainBranch
	}
	if desc.CreatedAt.IsZero() {
		desc.CreatedAt = time.Now().UTC()
	}
	if len(desc.Branches) == 0 {
		desc.Branches = []string{desc.MainBranch}
	}

	repo, err := git.Init(dir, desc.MainBranch, d.sig)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, ignoreFile), []byte(ignoreRules), 0o644); err != nil { //nolint:gosec // repository content is not secret
		return fmt.Errorf("writing %s: %w", ignoreFile, err)
	}
	if err := writeJSONFile(filepath.Join(dir, metadataFile), &desc); err != nil {
		return err
	}

	hash, err := repo.CommitFiles(initCommitMessage(conv.ID), ignoreFile, metadataFile)
	if err != nil {
		return err
	}

	d.logger.Debug("conversation created",
		"conversation_id", conv.ID,
		"dir", dir,
		"commit", hash.String(),
	)
	return nil
}

// discardPartial undoes a failed create. A directory that existed before
// the call keeps everything except what the create wrote into it.
func (d *Driver) discardPartial(dir string, created bool) {
	var cleanupErr error
	if created {
		cleanupErr = os.RemoveAll(dir)
	} else {
		cleanupErr = errors.Join(
			os.RemoveAll(filepath.Join(dir, ".git")),
			removeIfFile(filepath.Join(dir, ignoreFile)),
			removeIfFile(filepath.Join(dir, metadataFile)),
		)
	}
	if cleanupErr != nil {
		d.logger.Warn("discarding partial conversation", "dir", dir, "error", cleanupErr)
	}
}

func removeIfFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil || info.IsDir() {
		return nil
	}
	return os.Remove(path)
}

// ConversationExists checks for the conversation directory only.
func (d *Driver) ConversationExists(_ context.Context, id string) (bool, error) {
	info, err := os.Stat(d.resolver.Resolve(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking conversation %s: %w", id, err)
	}
	return info.IsDir(), nil
}

// GetConversation loads the descriptor. The returned ID is always id so
// namespaced ids round trip.
func (d *Driver) GetConversation(_ context.Context, id string) (*conversation.Conversation, error) {
	desc, err := readDescriptor(d.resolver.Resolve(id))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("unreadable conversation descriptor", "conversation_id", id, "error", err)
		}
		return nil, storage.NotFoundError{Resource: "conversation", ID: id}
	}

	desc.ID = id
	return desc, nil
}

// DeleteConversation removes the conversation directory. Deleting an absent
// conversation is not an error.
func (d *Driver) DeleteConversation(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	dir := d.resolver.Resolve(id)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing conversation %s: %w", id, err)
	}

	d.logger.Debug("conversation deleted", "conversation_id", id)
	return nil
}

// ListConversations walks namespace directories, then conversation
// directories, and returns every readable descriptor newest first.
func (d *Driver) ListConversations(ctx context.Context) ([]*conversation.Conversation, error) {
	namespaces, err := os.ReadDir(d.resolver.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*conversation.Conversation{}, nil
		}
		return nil, fmt.Errorf("listing %s: %w", d.resolver.BasePath, err)
	}

	convs := []*conversation.Conversation{}
	for _, ns := range namespaces {
		if !ns.IsDir() || !idSegmentPattern.MatchString(ns.Name()) {
			continue
		}

		nsDir := filepath.Join(d.resolver.BasePath, ns.Name())
		entries, err := os.ReadDir(nsDir)
		if err != nil {
			d.logger.Warn("skipping unreadable namespace", "namespace", ns.Name(), "error", err)
			continue
		}

		for _, e := range entries {
			if !e.IsDir() || !idSegmentPattern.MatchString(e.Name()) {
				continue
			}

			id := storage.JoinID(ns.Name(), e.Name())
			conv, err := d.GetConversation(ctx, id)
			if err != nil {
				continue
			}
			convs = append(convs, conv)
		}
	}

	sort.SliceStable(convs, func(i, j int) bool {
		if convs[i].CreatedAt.Equal(convs[j].CreatedAt) {
			return convs[i].ID < convs[j].ID
		}
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})

	return convs, nil
}
