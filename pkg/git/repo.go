// Package git wraps the go-git primitives the storage engine needs: init,
// stage and commit, checkout, refs, and a bounded history walk.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Signature is the author and committer identity used for commits.
type Signature struct {
	Name  string
	Email string
}

// DefaultSignature is used when no identity is configured.
var DefaultSignature = Signature{Name: "soapy", Email: "soapy@localhost"}

// Repo is an opened repository with a working tree.
type Repo struct {
	path string
	sig  Signature
	repo *gogit.Repository

	// setRef stores a reference; CreateBranchRef falls back to a loose ref
	// file when it fails.
	setRef func(*plumbing.Reference) error
}

func newRepo(path string, sig Signature, repo *gogit.Repository) *Repo {
	return &Repo{path: path, sig: sig, repo: repo, setRef: repo.Storer.SetReference}
}

// Init creates a new non-bare repository at path whose HEAD points at
// defaultBranch.
func Init(path, defaultBranch string, sig Signature) (*Repo, error) {
	repo, err := gogit.PlainInitWithOptions(path, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(defaultBranch),
		},
		Bare: false,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing repository at %s: %w", path, err)
	}

	return newRepo(path, sig, repo), nil
}

// Open opens an existing repository at path.
func Open(path string, sig Signature) (*Repo, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return newRepo(path, sig, repo), nil
}

// IsRepository reports whether path contains a .git directory.
func IsRepository(path string) bool {
	info, err := os.Stat(filepath.Join(path, gogit.GitDirName))
	return err == nil && info.IsDir()
}

// Path returns the working tree root.
func (r *Repo) Path() string {
	return r.path
}

// Raw exposes the underlying go-git repository.
func (r *Repo) Raw() *gogit.Repository {
	return r.repo
}

// CommitFiles stages the given working tree relative paths and records a
// single commit with message. It returns the new commit hash.
func (r *Repo) CommitFiles(message string, paths ...string) (plumbing.Hash, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("opening worktree: %w", err)
	}

	for _, p := range paths {
		if _, err := w.Add(filepath.ToSlash(p)); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("staging %s: %w", p, err)
		}
	}

	now := time.Now()
	author := &object.Signature{Name: r.sig.Name, Email: r.sig.Email, When: now}
	hash, err := w.Commit(message, &gogit.CommitOptions{
		Author:    author,
		Committer: author,
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("committing: %w", err)
	}

	return hash, nil
}

// ResetIndex drops anything staged since the last commit, leaving the
// working tree untouched.
func (r *Repo) ResetIndex() error {
	head, err := r.HeadHash()
	if err != nil {
		return err
	}
	if head.IsZero() {
		return nil
	}

	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}

	if err := w.Reset(&gogit.ResetOptions{Commit: head, Mode: gogit.MixedReset}); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}

	return nil
}

// CurrentBranch returns the short name of the branch HEAD points at. It
// works for unborn branches and returns "" when HEAD is detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}

	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}

	return "", nil
}

// Checkout switches the working tree to branch. The untracked files named
// in keep are carried across the switch.
func (r *Repo) Checkout(branch string, keep ...string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}

	saved := make(map[string][]byte, len(keep))
	for _, name := range keep {
		if data, err := os.ReadFile(filepath.Join(r.path, name)); err == nil {
			saved[name] = data
		}
	}

	if err := w.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
	}); err != nil {
		return fmt.Errorf("checking out %s: %w", branch, err)
	}

	for name, data := range saved {
		full := filepath.Join(r.path, name)
		if _, err := os.Stat(full); err == nil {
			continue
		}
		if err := os.WriteFile(full, data, 0o644); err != nil { //nolint:gosec // restored as found
			return fmt.Errorf("restoring %s: %w", name, err)
		}
	}

	return nil
}

// HeadHash returns the commit HEAD resolves to, or plumbing.ZeroHash when
// the current branch has no commits.
func (r *Repo) HeadHash() (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, nil
		}
		return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
	}

	return ref.Hash(), nil
}

// BranchHash returns the commit a local branch points at.
// Returns plumbing.ErrReferenceNotFound when the branch doesn't exist.
func (r *Repo) BranchHash(branch string) (plumbing.Hash, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return ref.Hash(), nil
}

// BranchExists reports whether a local branch ref is present.
func (r *Repo) BranchExists(branch string) (bool, error) {
	_, err := r.BranchHash(branch)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, err
}

// Branches returns every local branch name mapped to its tip.
func (r *Repo) Branches() (map[string]plumbing.Hash, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer iter.Close()

	branches := make(map[string]plumbing.Hash)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		branches[ref.Name().Short()] = ref.Hash()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating branches: %w", err)
	}

	return branches, nil
}

// CreateBranchRef points a new local branch at hash without touching HEAD
// or the working tree. If the ref storer refuses, the loose ref file is
// written directly.
func (r *Repo) CreateBranchRef(branch string, hash plumbing.Hash) error {
	name := plumbing.NewBranchReferenceName(branch)
	err := r.setRef(plumbing.NewHashReference(name, hash))
	if err == nil {
		return nil
	}

	if ferr := r.writeLooseRef(name, hash); ferr != nil {
		return fmt.Errorf("creating ref %s: %w (fallback: %v)", name, err, ferr)
	}

	return nil
}

func (r *Repo) writeLooseRef(name plumbing.ReferenceName, hash plumbing.Hash) error {
	refPath := filepath.Join(r.path, gogit.GitDirName, filepath.FromSlash(name.String()))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(refPath, []byte(hash.String()+"\n"), 0o644) //nolint:gosec // git refs are world readable
}

// DeleteBranchRef removes a local branch ref.
func (r *Repo) DeleteBranchRef(branch string) error {
	name := plumbing.NewBranchReferenceName(branch)
	if err := r.repo.Storer.RemoveReference(name); err != nil {
		return fmt.Errorf("removing ref %s: %w", name, err)
	}

	return nil
}

// Log walks history from hash, newest first, visiting at most depth
// commits. A depth of zero or less means unbounded.
func (r *Repo) Log(from plumbing.Hash, depth int, fn func(*object.Commit) error) error {
	iter, err := r.repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	seen := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if depth > 0 && seen >= depth {
			return storer.ErrStop
		}
		seen++
		return fn(c)
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return err
	}

	return nil
}

// Commit loads a commit object.
func (r *Repo) Commit(hash plumbing.Hash) (*object.Commit, error) {
	return r.repo.CommitObject(hash)
}

// MergeBase returns the best common ancestor of two commits, or nil when
// they share no history.
func (r *Repo) MergeBase(a, b plumbing.Hash) (*object.Commit, error) {
	ca, err := r.repo.CommitObject(a)
	if err != nil {
		return nil, err
	}
	cb, err := r.repo.CommitObject(b)
	if err != nil {
		return nil, err
	}

	bases, err := ca.MergeBase(cb)
	if err != nil {
		return nil, fmt.Errorf("computing merge base: %w", err)
	}
	if len(bases) == 0 {
		return nil, nil
	}

	return bases[0], nil
}
