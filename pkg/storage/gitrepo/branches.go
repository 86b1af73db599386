package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/eventstream"
	"github.com/papercomputeco/soapy/pkg/git"
	"github.com/papercomputeco/soapy/pkg/storage"
)

// CreateBranch points a new branch at the commit that introduced
// fromSequenceNumber on the checked-out branch. When no commit within the
// history depth matches, the branch is rooted at HEAD. Neither HEAD nor the
// working tree move.
func (d *Driver) CreateBranch(ctx context.Context, id, name string, fromSequenceNumber int, creatorID string) (*conversation.BranchResult, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	if err := storage.ValidateBranchName(name); err != nil {
		return nil, err
	}
	refName := plumbing.NewBranchReferenceName(name)

	repo, dir, err := d.openConversation(id)
	if err != nil {
		return nil, err
	}

	if name == d.mainBranchOf(dir) {
		return nil, fmt.Errorf("branch %s: %w", name, storage.ErrAlreadyExists)
	}
	exists, err := repo.BranchExists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("branch %s: %w", name, storage.ErrAlreadyExists)
	}

	head, err := repo.HeadHash()
	if err != nil {
		return nil, err
	}
	if head.IsZero() {
		return nil, storage.InvalidOperationError{Op: "create branch", Err: storage.ErrNoCommits}
	}

	root, rootSeq, err := d.locateSequence(repo, head, fromSequenceNumber)
	if err != nil {
		return nil, err
	}
	if root != head || rootSeq != fromSequenceNumber {
		d.logger.Debug("branch point resolved",
			"conversation_id", id,
			"branch", name,
			"requested", fromSequenceNumber,
			"sequence", rootSeq,
			"commit", root.String(),
		)
	}

	if err := repo.CreateBranchRef(name, root); err != nil {
		return nil, err
	}

	count, err := countTreeItems(repo, root)
	if err != nil {
		d.logger.Warn("failed to count branch items", "conversation_id", id, "branch", name, "error", err)
	}

	createdAt := time.Now().UTC()
	cache := d.loadBranchCache(dir)
	cache[name] = branchCacheEntry{
		SourceMessageNumber: rootSeq,
		CreatedAt:           createdAt,
		CreatorID:           creatorID,
		MessageCount:        count,
	}
	if err := d.saveBranchCache(dir, cache); err != nil {
		// The ref exists; GetBranches rebuilds the missing entry.
		d.logger.Warn("failed to update branch cache", "conversation_id", id, "branch", name, "error", err)
	}

	d.publish(ctx, eventstream.NewBranchCreated(id, name, rootSeq))

	return &conversation.BranchResult{
		BranchRef: refName.String(),
		CreatedAt: createdAt,
	}, nil
}

// locateSequence walks at most the configured depth of history from head
// and returns the first commit whose subject encodes seq, or head itself
// with its own sequence number when none does.
func (d *Driver) locateSequence(repo *git.Repo, head plumbing.Hash, seq int) (plumbing.Hash, int, error) {
	found := plumbing.ZeroHash
	headSeq := 0
	first := true

	err := repo.Log(head, d.depth, func(c *object.Commit) error {
		n, ok := parseCommitSequence(c.Message)
		if first {
			first = false
			if ok {
				headSeq = n
			}
		}
		if ok && n == seq {
			found = c.Hash
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return plumbing.ZeroHash, 0, err
	}

	if found.IsZero() {
		return head, headSeq, nil
	}
	return found, seq, nil
}

var errStopWalk = errors.New("stop walk")

// GetBranches lists every branch other than the main branch, oldest first.
// The side cache is reconciled with the refs on every call: entries for
// missing refs are dropped and refs without an entry are rebuilt from
// history. Message counts are computed from each branch tip.
func (d *Driver) GetBranches(ctx context.Context, id string) ([]*conversation.Branch, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	repo, dir, err := d.openConversation(id)
	if err != nil {
		return nil, err
	}

	refs, err := repo.Branches()
	if err != nil {
		return nil, err
	}

	main := d.mainBranchOf(dir)
	cache := d.loadBranchCache(dir)
	dirty := false

	for name := range cache {
		if _, ok := refs[name]; !ok || name == main {
			delete(cache, name)
			dirty = true
		}
	}

	for name, tip := range refs {
		if name == main {
			continue
		}
		if _, ok := cache[name]; ok {
			continue
		}
		cache[name] = d.rebuildBranchEntry(repo, refs[main], tip)
		dirty = true
		d.logger.Info("rebuilt branch cache entry", "conversation_id", id, "branch", name)
	}

	branches := make([]*conversation.Branch, 0, len(cache))
	for name, entry := range cache {
		count, err := countTreeItems(repo, refs[name])
		if err != nil {
			d.logger.Warn("failed to count branch items", "conversation_id", id, "branch", name, "error", err)
			count = entry.MessageCount
		}
		if count != entry.MessageCount {
			entry.MessageCount = count
			cache[name] = entry
			dirty = true
		}

		branches = append(branches, &conversation.Branch{
			Name:                 name,
			SourceSequenceNumber: entry.SourceMessageNumber,
			CreatedAt:            entry.CreatedAt,
			CreatorID:            entry.CreatorID,
			MessageCount:         count,
		})
	}

	if dirty {
		if err := d.saveBranchCache(dir, cache); err != nil {
			d.logger.Warn("failed to write healed branch cache", "conversation_id", id, "error", err)
		}
	}

	sort.Slice(branches, func(i, j int) bool {
		if branches[i].CreatedAt.Equal(branches[j].CreatedAt) {
			return branches[i].Name < branches[j].Name
		}
		return branches[i].CreatedAt.Before(branches[j].CreatedAt)
	})

	return branches, nil
}

// rebuildBranchEntry recovers what it can about a branch from its refs: the
// sequence number of its merge base with main and the time of its tip.
func (d *Driver) rebuildBranchEntry(repo *git.Repo, mainTip, tip plumbing.Hash) branchCacheEntry {
	entry := branchCacheEntry{}

	if c, err := repo.Commit(tip); err == nil {
		entry.CreatedAt = c.Committer.When.UTC()
	}

	if mainTip.IsZero() {
		return entry
	}

	base, err := repo.MergeBase(mainTip, tip)
	if err != nil || base == nil {
		return entry
	}
	if seq, ok := parseCommitSequence(base.Message); ok {
		entry.SourceMessageNumber = seq
	}

	return entry
}

// DeleteBranch removes a branch ref and its cache entry. The main branch
// can't be deleted. If the branch is checked out, main is checked out
// first.
func (d *Driver) DeleteBranch(ctx context.Context, id, name string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	repo, dir, err := d.openConversation(id)
	if err != nil {
		return err
	}

	main := d.mainBranchOf(dir)
	if name == main {
		return storage.InvalidOperationError{Op: "delete branch", Err: storage.ErrMainBranchProtected}
	}

	exists, err := repo.BranchExists(name)
	if err != nil {
		return err
	}
	if !exists {
		d.dropBranchEntry(id, dir, name)
		return storage.NotFoundError{Resource: "branch", ID: name}
	}

	current, err := repo.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		if err := repo.Checkout(main, sideCacheFiles...); err != nil {
			return err
		}
		d.logger.Debug("checked out main before branch delete", "conversation_id", id, "branch", name)
	}

	if err := repo.DeleteBranchRef(name); err != nil {
		return err
	}

	d.dropBranchEntry(id, dir, name)
	d.forgetSequence(dir, name)

	d.publish(ctx, eventstream.NewBranchDeleted(id, name))
	return nil
}

// dropBranchEntry removes name from the side cache. Cache problems are
// logged only.
func (d *Driver) dropBranchEntry(id, dir, name string) {
	cache := d.loadBranchCache(dir)
	if _, ok := cache[name]; !ok {
		return
	}

	delete(cache, name)
	if err := d.saveBranchCache(dir, cache); err != nil {
		d.logger.Warn("failed to update branch cache", "conversation_id", id, "branch", name, "error", err)
	}
}
