// Package initcmder provides the init command for initializing a local .soapy
// directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/config"
)

const (
	dirName = ".soapy"
)

const initLongDesc string = `Initialize a new .soapy/ directory in the current working directory.

Creates a local .soapy/ directory that takes precedence over the default
~/.soapy/ directory for configuration, the conversation store and the
selected conversation. A config.toml is written from the chosen preset
unless one already exists.

Presets:
  local    Events stay in process (default)
  kafka    Storage events are published to a Kafka broker on localhost:9092

Examples:
  soapy init
  soapy init --preset kafka`

const initShortDesc string = "Initialize a local .soapy/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Config preset: "+strings.Join(config.ValidPresetNames(), ", "))

	return cmd
}

func (c *initCommander) run(w io.Writer) error {
	cfg := config.NewDefaultConfig()
	if c.preset != "" {
		var err error
		cfg, err = config.PresetConfig(c.preset)
		if err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	alreadyInitialized := err == nil && info.IsDir()

	if err := os.MkdirAll(filepath.Join(dir, "conversations"), 0o755); err != nil {
		return fmt.Errorf("creating .soapy directory: %w", err)
	}

	configPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if c.preset != "" {
			fmt.Fprintf(w, "  %s %s\n", cliui.DimStyle.Render("Keeping existing config:"), configPath)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		cfger, err := config.NewConfiger(dir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfger.SaveConfig(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	} else {
		return fmt.Errorf("reading config: %w", err)
	}

	if alreadyInitialized {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
		return nil
	}

	fmt.Fprintf(w, "Initialized .soapy directory: %s\n", dir)
	return nil
}
