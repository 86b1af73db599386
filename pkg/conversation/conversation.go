// Package conversation holds the plain data model persisted by the storage
// engine: conversations, the items appended to them, and their branches.
package conversation

import "time"

// DefaultMainBranch is the branch every conversation starts on.
const DefaultMainBranch = "main"

// Conversation describes a single conversation repository.
type Conversation struct {
	// ID is the namespaced identifier, "namespace/local" or just "local".
	ID string `json:"id"`

	OrganizationID string    `json:"organizationId"`
	OwnerID        string    `json:"ownerId"`
	CreatedAt      time.Time `json:"createdAt"`

	// MainBranch is the name of the default branch, fixed at creation.
	MainBranch string `json:"mainBranch"`

	// Branches is informational and captured at creation time.
	Branches []string `json:"branches"`
}

// Branch is a named divergence point within a conversation.
type Branch struct {
	Name string `json:"name"`

	// SourceSequenceNumber is the item after which the branch diverges.
	SourceSequenceNumber int `json:"sourceSequenceNumber"`

	CreatedAt time.Time `json:"createdAt"`
	CreatorID string    `json:"creatorId"`

	// MessageCount is the number of items reachable from the branch tip,
	// computed when branches are listed.
	MessageCount int `json:"messageCount"`
}

// CommitResult is returned by every append.
type CommitResult struct {
	CommitHash     string    `json:"commitHash"`
	SequenceNumber int       `json:"sequenceNumber"`
	Timestamp      time.Time `json:"timestamp"`
}

// BranchResult is returned when a branch is created.
type BranchResult struct {
	BranchRef string    `json:"branchRef"`
	CreatedAt time.Time `json:"createdAt"`
}
