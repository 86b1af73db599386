package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/eventstream"
	"github.com/papercomputeco/soapy/pkg/git"
)

// pendingItem is one encoded item ready to be written and committed.
type pendingItem struct {
	suffix  string
	content []byte
	message string
	extra   []string
}

// appendTarget is an opened conversation with its active branch selected.
type appendTarget struct {
	id     string
	dir    string
	branch string
	repo   *git.Repo
}

func (d *Driver) openForAppend(ctx context.Context, id, branch string) (*appendTarget, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	repo, dir, err := d.openConversation(id)
	if err != nil {
		return nil, err
	}

	active, err := d.selectBranch(repo, id, branch)
	if err != nil {
		return nil, err
	}

	return &appendTarget{id: id, dir: dir, branch: active, repo: repo}, nil
}

// commit writes one item file at seq and records it as a single commit.
// If anything fails before the commit lands, the file and index are rolled
// back so the next attempt computes the same sequence number.
func (d *Driver) commit(t *appendTarget, seq int, item pendingItem) (*conversation.CommitResult, error) {
	name := itemFileName(seq, item.suffix)
	full := filepath.Join(t.dir, name)

	if err := os.WriteFile(full, item.content, 0o644); err != nil { //nolint:gosec // conversation files are not secret
		return nil, fmt.Errorf("writing %s: %w", name, err)
	}

	paths := append(append([]string{}, item.extra...), name)
	hash, err := t.repo.CommitFiles(item.message, paths...)
	if err != nil {
		os.Remove(full)
		if rerr := t.repo.ResetIndex(); rerr != nil {
			d.logger.Warn("failed to reset index after failed commit", "conversation_id", t.id, "error", rerr)
		}
		return nil, err
	}

	d.recordSequence(t.dir, t.branch, seq)

	d.logger.Debug("item committed",
		"conversation_id", t.id,
		"branch", t.branch,
		"sequence", seq,
		"file", name,
		"commit", hash.String(),
	)

	return &conversation.CommitResult{
		CommitHash:     hash.String(),
		SequenceNumber: seq,
	}, nil
}

// CommitMessage appends msg. Inline tool calls on msg are appended as
// their own ToolCall items after the message commit. The working tree is
// left on the branch written to.
func (d *Driver) CommitMessage(ctx context.Context, id string, msg *conversation.Message, branch string) (*conversation.CommitResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	for i := range msg.ToolCalls {
		if err := msg.ToolCalls[i].Validate(); err != nil {
			return nil, fmt.Errorf("inline tool call %d: %w", i, err)
		}
	}

	t, err := d.openForAppend(ctx, id, branch)
	if err != nil {
		return nil, err
	}

	seq, err := d.nextSequence(t.dir, t.branch)
	if err != nil {
		return nil, err
	}

	stored := *msg
	stored.ToolCalls = nil
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}

	// Attachment files left behind by a failed append are untracked and
	// never affect sequence numbering.
	written, err := storeAttachments(t.dir, &stored)
	if err != nil {
		return nil, err
	}

	result, err := d.commit(t, seq, pendingItem{
		suffix:  string(stored.Role),
		content: encodeMessage(&stored),
		message: messageCommitMessage(seq, stored.Role),
		extra:   written,
	})
	if err != nil {
		return nil, err
	}
	result.Timestamp = stored.Timestamp

	stored.SequenceNumber = result.SequenceNumber
	stored.CommitHash = result.CommitHash
	d.publish(ctx, eventstream.NewItemCommitted(id, t.branch, &stored, result))

	for i := range msg.ToolCalls {
		call := msg.ToolCalls[i]
		if _, err := d.appendToolCall(ctx, t, &call); err != nil {
			return nil, fmt.Errorf("appending inline tool call %d: %w", i, err)
		}
	}

	return result, nil
}

// CommitToolCall appends a tool call.
func (d *Driver) CommitToolCall(ctx context.Context, id string, call *conversation.ToolCall, branch string) (*conversation.CommitResult, error) {
	if err := call.Validate(); err != nil {
		return nil, err
	}

	t, err := d.openForAppend(ctx, id, branch)
	if err != nil {
		return nil, err
	}

	return d.appendToolCall(ctx, t, call)
}

func (d *Driver) appendToolCall(ctx context.Context, t *appendTarget, call *conversation.ToolCall) (*conversation.CommitResult, error) {
	if err := call.Validate(); err != nil {
		return nil, err
	}

	seq, err := d.nextSequence(t.dir, t.branch)
	if err != nil {
		return nil, err
	}

	stored := *call
	if stored.RequestedAt.IsZero() {
		stored.RequestedAt = time.Now().UTC()
	}

	content, err := encodeToolCall(&stored)
	if err != nil {
		return nil, err
	}

	result, err := d.commit(t, seq, pendingItem{
		suffix:  suffixToolCall,
		content: content,
		message: toolCallCommitMessage(seq, stored.ToolName),
	})
	if err != nil {
		return nil, err
	}
	result.Timestamp = stored.RequestedAt

	stored.SequenceNumber = result.SequenceNumber
	stored.CommitHash = result.CommitHash
	d.publish(ctx, eventstream.NewItemCommitted(t.id, t.branch, &stored, result))

	return result, nil
}

// CommitToolResult appends a tool result.
func (d *Driver) CommitToolResult(ctx context.Context, id string, res *conversation.ToolResult, branch string) (*conversation.CommitResult, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}

	t, err := d.openForAppend(ctx, id, branch)
	if err != nil {
		return nil, err
	}

	seq, err := d.nextSequence(t.dir, t.branch)
	if err != nil {
		return nil, err
	}

	stored := *res
	if stored.ExecutedAt.IsZero() {
		stored.ExecutedAt = time.Now().UTC()
	}

	content, err := encodeToolResult(&stored)
	if err != nil {
		return nil, err
	}

	result, err := d.commit(t, seq, pendingItem{
		suffix:  suffixToolResult,
		content: content,
		message: toolResultCommitMessage(seq, stored.Status),
	})
	if err != nil {
		return nil, err
	}
	result.Timestamp = stored.ExecutedAt

	stored.SequenceNumber = result.SequenceNumber
	stored.CommitHash = result.CommitHash
	d.publish(ctx, eventstream.NewItemCommitted(id, t.branch, &stored, result))

	return result, nil
}

// storeAttachments decodes inline base64 payloads into files/<filename>,
// replaces the payload with the storage relative path, and returns the
// paths written. Attachments without a payload are kept as given.
func storeAttachments(dir string, msg *conversation.Message) ([]string, error) {
	if len(msg.Attachments) == 0 {
		return nil, nil
	}

	attachments := make([]conversation.Attachment, len(msg.Attachments))
	copy(attachments, msg.Attachments)
	msg.Attachments = attachments

	var written []string
	for i := range attachments {
		a := &attachments[i]
		if a.Data == "" {
			continue
		}

		name := filepath.Base(filepath.Clean(a.Filename))
		if name == "." || name == string(filepath.Separator) || name == ".." {
			return written, fmt.Errorf("attachment %d: invalid filename %q", i, a.Filename)
		}

		data, err := conversation.DecodeAttachmentData(a.Data)
		if err != nil {
			return written, fmt.Errorf("attachment %s: %w", name, err)
		}

		if err := os.MkdirAll(filepath.Join(dir, filesDir), 0o755); err != nil {
			return written, fmt.Errorf("creating %s: %w", filesDir, err)
		}

		rel := path.Join(filesDir, name)
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(rel)), data, 0o644); err != nil { //nolint:gosec // attachments are not secret
			return written, fmt.Errorf("writing attachment %s: %w", name, err)
		}
		written = append(written, rel)

		a.Filename = name
		a.Size = int64(len(data))
		a.Path = rel
		a.Data = ""
	}

	return written, nil
}
