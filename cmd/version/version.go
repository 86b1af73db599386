// Package versioncmder implements `soapy version`.
package versioncmder

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Long:  "Print the version, commit, build time and Go runtime of this soapy binary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), utils.BuildInfo())
				return err
			}
			return printDetails(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print a single line")
	return cmd
}

func printDetails(w io.Writer) error {
	fields := [][2]string{
		{"Version", utils.Version},
		{"Commit", utils.Sha},
		{"Built", utils.Buildtime},
		{"Go", runtime.Version()},
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-9s", f[0]+":")), cliui.ValueStyle.Render(f[1])); err != nil {
			return err
		}
	}
	return nil
}
