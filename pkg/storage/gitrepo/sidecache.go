package gitrepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// branchCacheEntry is the on-disk record for one branch in
// .soapy-branches.json. The file is ignored by git: it carries metadata a
// ref cannot express.
type branchCacheEntry struct {
	SourceMessageNumber int       `json:"sourceMessageNumber"`
	CreatedAt           time.Time `json:"createdAt"`
	CreatorID           string    `json:"creatorId"`
	MessageCount        int       `json:"messageCount"`
}

type branchCache map[string]branchCacheEntry

// sequenceCache maps branch name to the last sequence number committed on
// it, persisted in .soapy-sequence.json.
type sequenceCache map[string]int

// readJSONFile decodes path into v. A missing file is reported as
// os.ErrNotExist so callers can tell it apart from corruption.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	return nil
}

// writeJSONFile writes v to path through a temp file and rename so readers
// never observe a partial document.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}

	return nil
}

// loadBranchCache reads the branch side cache. Absent or corrupt caches are
// treated as empty.
func (d *Driver) loadBranchCache(dir string) branchCache {
	cache := branchCache{}
	err := readJSONFile(filepath.Join(dir, branchCacheFile), &cache)
	switch {
	case err == nil:
		return cache
	case errors.Is(err, os.ErrNotExist):
		return branchCache{}
	default:
		d.logger.Warn("ignoring unreadable branch cache", "dir", dir, "error", err)
		return branchCache{}
	}
}

func (d *Driver) saveBranchCache(dir string, cache branchCache) error {
	return writeJSONFile(filepath.Join(dir, branchCacheFile), cache)
}

func (d *Driver) loadSequenceCache(dir string) sequenceCache {
	cache := sequenceCache{}
	err := readJSONFile(filepath.Join(dir, sequenceCacheFile), &cache)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("ignoring unreadable sequence cache", "dir", dir, "error", err)
		}
		return sequenceCache{}
	}
	return cache
}

func (d *Driver) saveSequenceCache(dir string, cache sequenceCache) error {
	return writeJSONFile(filepath.Join(dir, sequenceCacheFile), cache)
}
