// ABOUTME: Long-running subcommands: MCP server, web view, and terminal UI
// ABOUTME: Each opens the store and hands it to the matching front end
package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/handlers"
	"github.com/harperreed/rapport/tui"
	"github.com/harperreed/rapport/web"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Run the Model Context Protocol server on stdin/stdout so assistants
such as Claude Desktop can read and update your contacts.

Logs go to stderr; stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			a.logger.Info("starting MCP server", "backend", a.cfg.Backend)
			server := handlers.NewServer(store, versionInfo.Version)
			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			return nil
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only web view and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open()
			if err != nil {
				return err
			}
			srv, err := web.NewServer(store, a.registry, a.logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Listen address")
	return cmd
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse contacts, reminders, and interactions interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The alt screen owns the terminal; stderr logs would tear it.
			if a.logOut == nil {
				a.logOut = io.Discard
			}
			store, err := a.open()
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), store)
		},
	}
}
