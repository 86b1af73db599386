package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/git"
	"github.com/papercomputeco/soapy/pkg/storage"
)

// itemFile is a raw item file found on disk or in a commit tree.
type itemFile struct {
	name string
	seq  int
	kind conversation.Kind
	data []byte
}

// GetConversationItems returns the items of branch ordered by sequence
// number. The checked-out branch is read from the working tree; any other
// branch is read straight from its commit tree, so reads never move HEAD.
func (d *Driver) GetConversationItems(ctx context.Context, id string, branch string) ([]conversation.Item, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	repo, dir, err := d.openConversation(id)
	if err != nil {
		return nil, err
	}

	current, err := repo.CurrentBranch()
	if err != nil {
		return nil, err
	}

	var (
		tip   plumbing.Hash
		files []itemFile
	)
	if branch == "" || branch == current {
		tip, err = repo.HeadHash()
		if err != nil {
			return nil, err
		}
		files, err = readWorkingTreeItems(dir)
	} else {
		tip, err = repo.BranchHash(branch)
		if err != nil {
			if errors.Is(err, plumbing.ErrReferenceNotFound) {
				return nil, storage.NotFoundError{Resource: "branch", ID: branch}
			}
			return nil, err
		}
		files, err = readTreeItems(repo, tip)
	}
	if err != nil {
		return nil, err
	}

	index, err := commitIndex(repo, tip)
	if err != nil {
		return nil, err
	}

	return d.decodeItems(id, files, index), nil
}

// GetMessages returns only the message items of branch.
func (d *Driver) GetMessages(ctx context.Context, id string, branch string) ([]*conversation.Message, error) {
	items, err := d.GetConversationItems(ctx, id, branch)
	if err != nil {
		return nil, err
	}

	return conversation.Messages(items), nil
}

// decodeItems parses every file, dropping the ones that fail to parse,
// attaches commit hashes, and sorts by sequence number.
func (d *Driver) decodeItems(id string, files []itemFile, index map[int]string) []conversation.Item {
	items := make([]conversation.Item, 0, len(files))
	for _, f := range files {
		item, err := decodeItem(f.kind, f.seq, f.data)
		if err != nil {
			d.logger.Warn("skipping malformed item file",
				"conversation_id", id,
				"file", f.name,
				"error", err,
			)
			continue
		}

		hash := index[f.seq]
		switch v := item.(type) {
		case *conversation.Message:
			v.CommitHash = hash
		case *conversation.ToolCall:
			v.CommitHash = hash
		case *conversation.ToolResult:
			v.CommitHash = hash
		}

		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Sequence() < items[j].Sequence()
	})

	return items
}

func readWorkingTreeItems(dir string) ([]itemFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []itemFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		seq, kind, ok := parseItemFileName(e.Name())
		if !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		files = append(files, itemFile{name: e.Name(), seq: seq, kind: kind, data: data})
	}

	return files, nil
}

func readTreeItems(repo *git.Repo, tip plumbing.Hash) ([]itemFile, error) {
	tree, err := commitTree(repo, tip)
	if err != nil {
		return nil, err
	}

	var files []itemFile
	for i := range tree.Entries {
		entry := &tree.Entries[i]
		if !entry.Mode.IsFile() {
			continue
		}
		seq, kind, ok := parseItemFileName(entry.Name)
		if !ok {
			continue
		}

		f, err := tree.TreeEntryFile(entry)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name, err)
		}
		contents, err := f.Contents()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name, err)
		}
		files = append(files, itemFile{name: entry.Name, seq: seq, kind: kind, data: []byte(contents)})
	}

	return files, nil
}

// countTreeItems counts item files in the tree of tip.
func countTreeItems(repo *git.Repo, tip plumbing.Hash) (int, error) {
	tree, err := commitTree(repo, tip)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range tree.Entries {
		if _, _, ok := parseItemFileName(entry.Name); ok && entry.Mode.IsFile() {
			count++
		}
	}
	return count, nil
}

func commitTree(repo *git.Repo, hash plumbing.Hash) (*object.Tree, error) {
	commit, err := repo.Commit(hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", hash, err)
	}

	return tree, nil
}

// commitIndex maps each sequence number to the commit that introduced it
// by walking history from tip.
func commitIndex(repo *git.Repo, tip plumbing.Hash) (map[int]string, error) {
	index := make(map[int]string)
	if tip.IsZero() {
		return index, nil
	}

	err := repo.Log(tip, 0, func(c *object.Commit) error {
		if seq, ok := parseCommitSequence(c.Message); ok {
			if _, seen := index[seq]; !seen {
				index[seq] = c.Hash.String()
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return index, nil
}
