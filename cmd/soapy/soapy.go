// Package soapycmder is the root soapy command.
package soapycmder

import (
	"github.com/spf13/cobra"

	branchcmder "github.com/papercomputeco/soapy/cmd/soapy/branch"
	configcmder "github.com/papercomputeco/soapy/cmd/soapy/config"
	conversationcmder "github.com/papercomputeco/soapy/cmd/soapy/conversation"
	initcmder "github.com/papercomputeco/soapy/cmd/soapy/init"
	messagecmder "github.com/papercomputeco/soapy/cmd/soapy/message"
	servecmder "github.com/papercomputeco/soapy/cmd/soapy/serve"
	statuscmder "github.com/papercomputeco/soapy/cmd/soapy/status"
	tailcmder "github.com/papercomputeco/soapy/cmd/soapy/tail"
	toolcmder "github.com/papercomputeco/soapy/cmd/soapy/tool"
	usecmder "github.com/papercomputeco/soapy/cmd/soapy/use"
	versioncmder "github.com/papercomputeco/soapy/cmd/version"
)

const soapyLongDesc string = `Soapy stores agent conversations as git repositories.

Every conversation is its own repository; every message, tool call and tool
result is one commit. Branches fork a conversation at any item.

Get started:
  soapy init                          Create a local .soapy/ directory
  soapy conversation create           Start a conversation and select it
  soapy message add "hello"           Append a user message
  soapy conversation show             Print the selected conversation
  soapy serve                         Run the REST and MCP API`

const soapyShortDesc string = "Soapy - git backed conversation storage"

func NewSoapyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "soapy",
		Short:        soapyShortDesc,
		Long:         soapyLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .soapy/ directory")

	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(conversationcmder.NewConversationCmd())
	cmd.AddCommand(usecmder.NewUseCmd())
	cmd.AddCommand(messagecmder.NewMessageCmd())
	cmd.AddCommand(toolcmder.NewToolCmd())
	cmd.AddCommand(branchcmder.NewBranchCmd())
	cmd.AddCommand(tailcmder.NewTailCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
