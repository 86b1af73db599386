// Package configcmder provides the config command for managing persistent
// soapy configuration stored in the .soapy/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/config"
)

const configLongDesc string = `Manage persistent soapy configuration.

Configuration is stored as config.toml in the .soapy/ directory and provides
default values for command flags. CLI flags and SOAPY_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.base_path, storage.default_branch, storage.history_depth,
  storage.author_name, storage.author_email,
  api.listen, client.api_target,
  eventstream.provider, eventstream.brokers, eventstream.topic

Examples:
  soapy config set storage.default_branch trunk
  soapy config set eventstream.provider kafka
  soapy config get api.listen
  soapy config list`

const configShortDesc string = "Manage persistent soapy configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(w io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
