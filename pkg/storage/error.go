package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when creating a conversation or branch
	// that is already present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMainBranchProtected is returned when deleting the default branch.
	ErrMainBranchProtected = errors.New("cannot delete main branch")

	// ErrNoCommits is returned when branching a conversation without history.
	ErrNoCommits = errors.New("no commits")
)

// NotFoundError is returned when a conversation or branch doesn't exist.
type NotFoundError struct {
	// Resource is "conversation" or "branch".
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "resource"
	}

	if e.ID == "" {
		return resource + " not found"
	}

	return resource + " not found: " + e.ID
}

// InvalidOperationError is returned for requests that are well formed but
// not allowed in the current state. Err is ErrMainBranchProtected or
// ErrNoCommits.
type InvalidOperationError struct {
	Op  string
	Err error
}

func (e InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %v", e.Op, e.Err)
}

func (e InvalidOperationError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidOperation reports whether err is or wraps an InvalidOperationError.
func IsInvalidOperation(err error) bool {
	var inv InvalidOperationError
	return errors.As(err, &inv)
}
