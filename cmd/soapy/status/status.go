// Package statuscmder provides the status command for displaying the selected
// conversation, the store location, and API reachability.
package statuscmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/config"
	"github.com/papercomputeco/soapy/pkg/dotdir"
	"github.com/papercomputeco/soapy/pkg/storage"
	"github.com/papercomputeco/soapy/pkg/utils"
)

const statusLongDesc string = `Show the current soapy state.

Displays the selected conversation and branch with its item count, the
conversation store directory, and whether the API server configured under
client.api_target answers.

Examples:
  soapy status
  soapy status --api-target http://localhost:8090`

const statusShortDesc string = "Show current selection and store"

type statusCommander struct {
	opts      storeopts.Options
	apiTarget string
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmder.opts.Load(cmd, config.FlagAPITarget); err != nil {
				return err
			}
			cmder.apiTarget = cmder.opts.Viper().GetString("client.api_target")
			return cmder.run(cmd)
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)

	return cmd
}

func (c *statusCommander) run(cmd *cobra.Command) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n  %s\n", cliui.DimStyle.Render(utils.BuildInfo()))
	fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("Store:   "), cliui.ValueStyle.Render(c.opts.BasePath))

	sel, err := dotdir.NewManager().LoadSelection(c.opts.ConfigDir)
	if err != nil {
		return fmt.Errorf("loading selection: %w", err)
	}

	if sel == nil {
		fmt.Fprintf(w, "  %s No conversation selected.\n", cliui.DimStyle.Render("●"))
	} else if err := c.printSelection(cmd.Context(), w, sel); err != nil {
		return err
	}

	if c.apiTarget != "" {
		// An unreachable API is reported, not returned.
		_ = cliui.Step(w, "API "+c.apiTarget, func() error {
			if !apiReachable(cmd.Context(), c.apiTarget) {
				return errUnreachable
			}
			return nil
		})
	}

	fmt.Fprintln(w)
	return nil
}

var errUnreachable = errors.New("unreachable")

func (c *statusCommander) printSelection(ctx context.Context, w io.Writer, sel *dotdir.Selection) error {
	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("Selected:"), cliui.ValueStyle.Render(sel.ConversationID))

	branch := sel.Branch
	if branch == "" {
		branch = cliui.Muted("(checked out)")
	}
	fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("Branch:  "), branch)

	items, err := store.GetConversationItems(ctx, sel.ConversationID, sel.Branch)
	switch {
	case storage.IsNotFound(err):
		fmt.Fprintf(w, "  %s Selected conversation no longer exists.\n", cliui.FailMark)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("Items:   "), cliui.ValueStyle.Render(strconv.Itoa(len(items))))
	return nil
}

func apiReachable(ctx context.Context, apiURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	url := strings.TrimRight(apiURL, "/") + "/ping"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
