package storage

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// ValidateBranchName rejects names that cannot be stored as a branch ref.
func ValidateBranchName(name string) error {
	if name == "" {
		return errors.New("branch name is required")
	}
	if err := plumbing.NewBranchReferenceName(name).Validate(); err != nil {
		return fmt.Errorf("branch %q: %w", name, err)
	}
	return nil
}
