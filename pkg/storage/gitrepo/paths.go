package gitrepo

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/papercomputeco/soapy/pkg/storage"
)

// DefaultNamespace holds conversations whose id has no namespace segment.
const DefaultNamespace = storage.DefaultNamespace

// idSegmentPattern is the naming convention for namespace and conversation
// directories.
var idSegmentPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Resolver maps conversation ids to directories under BasePath.
type Resolver struct {
	BasePath string
}

// NewResolver creates a Resolver rooted at basePath.
func NewResolver(basePath string) *Resolver {
	return &Resolver{BasePath: basePath}
}

// Resolve returns basePath/namespace/localId.
func (r *Resolver) Resolve(id string) string {
	ns, local := storage.SplitID(id)
	return filepath.Join(r.BasePath, ns, local)
}

// ValidateID rejects ids that would resolve outside of their namespace
// directory. Resolution itself never fails; creation validates first.
func ValidateID(id string) error {
	ns, local := storage.SplitID(id)
	if !idSegmentPattern.MatchString(ns) {
		return fmt.Errorf("invalid conversation namespace %q", ns)
	}
	if !idSegmentPattern.MatchString(local) || strings.Contains(local, "..") {
		return fmt.Errorf("invalid conversation id %q", id)
	}

	return nil
}
