// Package tailcmder provides the tail command, which prints the latest items
// of a conversation and follows new commits as they land.
package tailcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	conversationcmder "github.com/papercomputeco/soapy/cmd/soapy/conversation"
	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/storage"
)

const tailLongDesc string = `Print the latest items of a conversation and follow new ones.

Watches the conversation repository and prints every item committed by any
writer (another soapy command, the API server) until interrupted.

Examples:
  soapy tail
  soapy tail team/support-42 --branch alt -n 20
  soapy tail --once`

const tailShortDesc string = "Follow a conversation"

const lineWidth = 72

type tailCommander struct {
	opts    storeopts.Options
	branch  string
	lines   int
	once    bool
	oneline bool
}

func NewTailCmd() *cobra.Command {
	cmder := &tailCommander{}

	cmd := &cobra.Command{
		Use:   "tail [id]",
		Short: tailShortDesc,
		Long:  tailLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return cmder.run(cmd, id)
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	cmd.Flags().StringVar(&cmder.branch, "branch", "", "Branch to follow (default: the checked-out branch)")
	cmd.Flags().IntVarP(&cmder.lines, "lines", "n", 10, "Number of existing items to print first")
	cmd.Flags().BoolVar(&cmder.once, "once", false, "Print the latest items and exit")
	cmd.Flags().BoolVar(&cmder.oneline, "oneline", true, "Print one line per item")

	return cmd
}

func (c *tailCommander) run(cmd *cobra.Command, id string) error {
	id, branch, err := c.opts.Target(id, c.branch)
	if err != nil {
		return err
	}

	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	t := &tailer{
		driver:  store,
		id:      id,
		branch:  branch,
		out:     cmd.OutOrStdout(),
		oneline: c.oneline,
	}

	if err := t.printLatest(cmd.Context(), c.lines); err != nil {
		return err
	}
	if c.once {
		return nil
	}

	watcher, err := watch(store.Resolver.Resolve(id))
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = t.follow(ctx, watcher)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// tailer prints items of one branch past the last sequence number seen.
type tailer struct {
	driver  storage.Driver
	id      string
	branch  string
	out     io.Writer
	oneline bool

	last int
}

func (t *tailer) printLatest(ctx context.Context, n int) error {
	items, err := t.driver.GetConversationItems(ctx, t.id, t.branch)
	if err != nil {
		return err
	}

	// Everything present now counts as seen, printed or not.
	t.markSeen(items)
	if n >= 0 && len(items) > n {
		items = items[len(items)-n:]
	}
	t.print(items)
	return nil
}

// printNew prints the items committed since the last call.
func (t *tailer) printNew(ctx context.Context) error {
	items, err := t.driver.GetConversationItems(ctx, t.id, t.branch)
	if err != nil {
		return err
	}

	fresh := make([]conversation.Item, 0, len(items))
	for _, item := range items {
		if item.Sequence() > t.last {
			fresh = append(fresh, item)
		}
	}
	t.print(fresh)
	return nil
}

func (t *tailer) print(items []conversation.Item) {
	if len(items) == 0 {
		return
	}
	t.markSeen(items)
	if t.oneline {
		for _, item := range items {
			fmt.Fprintln(t.out, cliui.ItemLine(item, lineWidth))
		}
		return
	}
	conversationcmder.PrintItems(t.out, items, false, false)
}

func (t *tailer) markSeen(items []conversation.Item) {
	for _, item := range items {
		if item.Sequence() > t.last {
			t.last = item.Sequence()
		}
	}
}

// watch watches the working tree and the branch refs of a conversation.
// Commits to the checked-out branch touch the working tree; commits to
// other branches only move their ref.
func watch(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating conversation watcher: %w", err)
	}

	for _, path := range []string{dir, filepath.Join(dir, ".git"), filepath.Join(dir, ".git", "refs", "heads")} {
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", path, err)
		}
	}

	return watcher, nil
}

// follow prints new items on every change the watcher reports until ctx is
// done.
func (t *tailer) follow(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := t.printNew(ctx); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("conversation watcher error: %w", err)
		}
	}
}
