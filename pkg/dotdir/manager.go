// Package dotdir manages the .soapy/ and ~/.soapy directories.
//
// The directory holds config.toml, the default conversation store and the
// selection state: the conversation and branch CLI commands act on when none
// is given explicitly.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the soapy directory.
	dirName = ".soapy"

	// conversationsDir is the default storage root inside the directory.
	conversationsDir = "conversations"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path of the .soapy/ directory to use, creating
// it when missing. The first match wins:
//  1. overrideDir
//  2. ./.soapy/ when it exists
//  3. ~/.soapy/
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating soapy directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// ConversationsDir returns the default storage root inside the resolved
// .soapy/ directory.
func (m *Manager) ConversationsDir(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, conversationsDir), nil
}

func (m *Manager) resolve(overrideDir string) (string, error) {
	if overrideDir != "" {
		return overrideDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if local := filepath.Join(cwd, dirName); isDir(local) {
		return local, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
