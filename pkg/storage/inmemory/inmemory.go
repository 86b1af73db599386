// Package inmemory provides a storage.Driver that keeps conversations in
// process memory. It follows the git backed driver's semantics without
// touching disk and is used by tests and ephemeral servers.
package inmemory

import (
	"context"
	"crypto/sha1" //nolint:gosec // mimics git object ids
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/storage"
)

type branchState struct {
	meta  conversation.Branch
	items []conversation.Item
}

type conversationState struct {
	conv     conversation.Conversation
	current  string
	branches map[string]*branchState

	// files holds decoded attachment payloads keyed by storage path.
	files map[string][]byte
}

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu guards every conversation; the driver is safe for concurrent use.
	mu sync.RWMutex

	conversations map[string]*conversationState
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		conversations: make(map[string]*conversationState),
	}
}

func fakeHash(parts ...string) string {
	h := sha1.New() //nolint:gosec // not used for security
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Driver) lookup(id string) (*conversationState, error) {
	state, ok := s.conversations[id]
	if !ok {
		return nil, storage.NotFoundError{Resource: "conversation", ID: id}
	}
	return state, nil
}

// CreateConversation registers a new conversation with an empty main branch.
func (s *Driver) CreateConversation(_ context.Context, conv *conversation.Conversation) error {
	if conv == nil {
		return errors.New("conversation is nil")
	}
	if conv.ID == "" {
		return errors.New("conversation id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conv.ID]; ok {
		return fmt.Errorf("conversation %s: %w", conv.ID, storage.ErrAlreadyExists)
	}

	c := *conv
	if c.MainBranch == "" {
		c.MainBranch = conversation.DefaultMainBranch
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if len(c.Branches) == 0 {
		c.Branches = []string{c.MainBranch}
	}

	s.conversations[c.ID] = &conversationState{
		conv:    c,
		current: c.MainBranch,
		branches: map[string]*branchState{
			c.MainBranch: {meta: conversation.Branch{Name: c.MainBranch, CreatedAt: c.CreatedAt}},
		},
		files: make(map[string][]byte),
	}
	return nil
}

// ConversationExists reports whether id was created.
func (s *Driver) ConversationExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.conversations[id]
	return ok, nil
}

// GetConversation returns a copy of the descriptor.
func (s *Driver) GetConversation(_ context.Context, id string) (*conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	c := state.conv
	c.Branches = append([]string(nil), c.Branches...)
	return &c, nil
}

// DeleteConversation forgets id. Deleting an unknown id is a no-op.
func (s *Driver) DeleteConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)
	return nil
}

// ListConversations returns all conversations, newest first.
func (s *Driver) ListConversations(_ context.Context) ([]*conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	convs := make([]*conversation.Conversation, 0, len(s.conversations))
	for _, state := range s.conversations {
		c := state.conv
		convs = append(convs, &c)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		if convs[i].CreatedAt.Equal(convs[j].CreatedAt) {
			return convs[i].ID < convs[j].ID
		}
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})

	return convs, nil
}

// selectBranch mirrors a checkout: a named branch becomes current.
func (state *conversationState) selectBranch(branch string) (*branchState, error) {
	if branch == "" {
		branch = state.current
	}

	b, ok := state.branches[branch]
	if !ok {
		return nil, storage.NotFoundError{Resource: "branch", ID: branch}
	}

	state.current = branch
	return b, nil
}

func (b *branchState) nextSequence() int {
	if len(b.items) == 0 {
		return 1
	}
	return b.items[len(b.items)-1].Sequence() + 1
}

func (b *branchState) headHash(root string) string {
	if len(b.items) == 0 {
		return root
	}
	return b.items[len(b.items)-1].Commit()
}

func (s *Driver) appendItem(id, branchName string, b *branchState, item conversation.Item, at time.Time) *conversation.CommitResult {
	seq := item.Sequence()
	hash := fakeHash(id, branchName, strconv.Itoa(seq), at.Format(time.RFC3339Nano), b.headHash(id))

	switch v := item.(type) {
	case *conversation.Message:
		v.CommitHash = hash
	case *conversation.ToolCall:
		v.CommitHash = hash
	case *conversation.ToolResult:
		v.CommitHash = hash
	}

	b.items = append(b.items, item)
	return &conversation.CommitResult{CommitHash: hash, SequenceNumber: seq, Timestamp: at}
}

// CommitMessage appends msg and any inline tool calls.
func (s *Driver) CommitMessage(_ context.Context, id string, msg *conversation.Message, branch string) (*conversation.CommitResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	for i := range msg.ToolCalls {
		if err := msg.ToolCalls[i].Validate(); err != nil {
			return nil, fmt.Errorf("inline tool call %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	b, err := state.selectBranch(branch)
	if err != nil {
		return nil, err
	}

	stored := *msg
	stored.ToolCalls = nil
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}

	stored.Attachments = make([]conversation.Attachment, len(msg.Attachments))
	copy(stored.Attachments, msg.Attachments)
	for i := range stored.Attachments {
		a := &stored.Attachments[i]
		if a.Data == "" {
			continue
		}
		data, err := conversation.DecodeAttachmentData(a.Data)
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", a.Filename, err)
		}
		a.Filename = path.Base(a.Filename)
		a.Path = path.Join("files", a.Filename)
		a.Size = int64(len(data))
		a.Data = ""
		state.files[a.Path] = data
	}
	if len(stored.Attachments) == 0 {
		stored.Attachments = nil
	}

	stored.SequenceNumber = b.nextSequence()
	result := s.appendItem(id, state.current, b, &stored, stored.Timestamp)

	for i := range msg.ToolCalls {
		call := msg.ToolCalls[i]
		if call.RequestedAt.IsZero() {
			call.RequestedAt = time.Now().UTC()
		}
		call.SequenceNumber = b.nextSequence()
		s.appendItem(id, state.current, b, &call, call.RequestedAt)
	}

	return result, nil
}

// CommitToolCall appends a tool call.
func (s *Driver) CommitToolCall(_ context.Context, id string, call *conversation.ToolCall, branch string) (*conversation.CommitResult, error) {
	if err := call.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	b, err := state.selectBranch(branch)
	if err != nil {
		return nil, err
	}

	stored := *call
	if stored.RequestedAt.IsZero() {
		stored.RequestedAt = time.Now().UTC()
	}
	stored.SequenceNumber = b.nextSequence()

	return s.appendItem(id, state.current, b, &stored, stored.RequestedAt), nil
}

// CommitToolResult appends a tool result.
func (s *Driver) CommitToolResult(_ context.Context, id string, res *conversation.ToolResult, branch string) (*conversation.CommitResult, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	b, err := state.selectBranch(branch)
	if err != nil {
		return nil, err
	}

	stored := *res
	if stored.ExecutedAt.IsZero() {
		stored.ExecutedAt = time.Now().UTC()
	}
	stored.SequenceNumber = b.nextSequence()

	return s.appendItem(id, state.current, b, &stored, stored.ExecutedAt), nil
}

// GetConversationItems returns copies of the items on branch. Reads never
// change the current branch.
func (s *Driver) GetConversationItems(_ context.Context, id string, branch string) ([]conversation.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if branch == "" {
		branch = state.current
	}
	b, ok := state.branches[branch]
	if !ok {
		return nil, storage.NotFoundError{Resource: "branch", ID: branch}
	}

	items := make([]conversation.Item, 0, len(b.items))
	for _, item := range b.items {
		items = append(items, copyItem(item))
	}
	return items, nil
}

// GetMessages returns only the message items of branch.
func (s *Driver) GetMessages(ctx context.Context, id string, branch string) ([]*conversation.Message, error) {
	items, err := s.GetConversationItems(ctx, id, branch)
	if err != nil {
		return nil, err
	}
	return conversation.Messages(items), nil
}

func copyItem(item conversation.Item) conversation.Item {
	switch v := item.(type) {
	case *conversation.Message:
		c := *v
		c.Attachments = append([]conversation.Attachment(nil), v.Attachments...)
		return &c
	case *conversation.ToolCall:
		c := *v
		return &c
	case *conversation.ToolResult:
		c := *v
		return &c
	default:
		return item
	}
}

// CreateBranch forks the current branch after the item numbered
// fromSequenceNumber, or after its latest item when none matches.
func (s *Driver) CreateBranch(_ context.Context, id, name string, fromSequenceNumber int, creatorID string) (*conversation.BranchResult, error) {
	if err := storage.ValidateBranchName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, ok := state.branches[name]; ok {
		return nil, fmt.Errorf("branch %s: %w", name, storage.ErrAlreadyExists)
	}

	src := state.branches[state.current]
	cut := len(src.items)
	for i, item := range src.items {
		if item.Sequence() == fromSequenceNumber {
			cut = i + 1
			break
		}
	}

	rootSeq := 0
	if cut > 0 {
		rootSeq = src.items[cut-1].Sequence()
	}

	createdAt := time.Now().UTC()
	state.branches[name] = &branchState{
		meta: conversation.Branch{
			Name:                 name,
			SourceSequenceNumber: rootSeq,
			CreatedAt:            createdAt,
			CreatorID:            creatorID,
		},
		items: append([]conversation.Item(nil), src.items[:cut]...),
	}

	return &conversation.BranchResult{BranchRef: "refs/heads/" + name, CreatedAt: createdAt}, nil
}

// GetBranches lists the non-main branches, oldest first.
func (s *Driver) GetBranches(_ context.Context, id string) ([]*conversation.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	branches := make([]*conversation.Branch, 0, len(state.branches))
	for name, b := range state.branches {
		if name == state.conv.MainBranch {
			continue
		}
		meta := b.meta
		meta.MessageCount = len(b.items)
		branches = append(branches, &meta)
	}

	sort.Slice(branches, func(i, j int) bool {
		if branches[i].CreatedAt.Equal(branches[j].CreatedAt) {
			return branches[i].Name < branches[j].Name
		}
		return branches[i].CreatedAt.Before(branches[j].CreatedAt)
	})

	return branches, nil
}

// DeleteBranch removes a non-main branch.
func (s *Driver) DeleteBranch(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.lookup(id)
	if err != nil {
		return err
	}
	if name == state.conv.MainBranch {
		return storage.InvalidOperationError{Op: "delete branch", Err: storage.ErrMainBranchProtected}
	}
	if _, ok := state.branches[name]; !ok {
		return storage.NotFoundError{Resource: "branch", ID: name}
	}

	delete(state.branches, name)
	if state.current == name {
		state.current = state.conv.MainBranch
	}
	return nil
}

// AttachmentData returns the decoded payload stored at path.
func (s *Driver) AttachmentData(id, path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	data, ok := state.files[path]
	return data, ok
}

// Close is a no-op.
func (s *Driver) Close() error {
	return nil
}
