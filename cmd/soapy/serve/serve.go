// Package servecmder provides the serve command, which runs the REST and MCP
// gateway over the local conversation store.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/api"
	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/config"
	"github.com/papercomputeco/soapy/pkg/logger"
)

type serveCommander struct {
	opts       storeopts.Options
	listen     string
	disableMCP bool
	logFile    string
}

const serveLongDesc string = `Run the soapy API server.

Serves the REST API under /v1 and the MCP endpoint under /mcp over the
conversation store. Writes to one conversation are serialized; different
conversations are served in parallel.

Examples:
  soapy serve
  soapy serve --listen :9000 --base-path /var/lib/soapy
  soapy serve --eventstream-provider kafka --eventstream-brokers localhost:9092`

const serveShortDesc string = "Run the soapy API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmder.opts.Load(cmd, config.FlagAPIListen); err != nil {
				return err
			}
			cmder.listen = cmder.opts.Viper().GetString("api.listen")

			return cmder.run()
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	cmd.Flags().BoolVar(&cmder.disableMCP, "disable-mcp", false, "Serve /mcp without tools")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run() error {
	log, closeLog, err := c.logger()
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := c.opts.Open(log)
	if err != nil {
		return err
	}
	defer store.Close()

	server, err := api.NewServer(api.Config{
		ListenAddr: c.listen,
		DisableMCP: c.disableMCP,
	}, store, log)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	log.Info("serving conversations",
		"base_path", c.opts.BasePath,
		"listen", c.listen,
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

// logger returns the command logger, fanned out to a JSON log file when
// --log-file is set.
func (c *serveCommander) logger() (*slog.Logger, func(), error) {
	log := c.opts.Logger()
	if c.logFile == "" {
		return log, func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // user supplied path
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	fileLog := logger.New(
		logger.WithDebug(c.opts.Debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)
	return logger.Multi(log, fileLog), func() { _ = f.Close() }, nil
}
