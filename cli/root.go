// ABOUTME: Root cobra command, global flags, and the lazily opened store
// ABOUTME: Wires config, logging, the gateway, repositories, and cache controllers
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/config"
	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/repository"
)

var versionInfo = VersionInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// SetVersion records build information (called from main).
func SetVersion(version, commit, date string) {
	versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// app carries state shared by every subcommand of one invocation.
type app struct {
	dbPath   string
	backend  string
	logLevel string

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	gateway  db.Gateway
	ownsGW   bool
	store    *cache.Store
	now      func() time.Time
	logOut   io.Writer
}

// open builds the store on first use. Commands that never touch data
// (version, help) never open a gateway.
func (a *app) open() (*cache.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		a.cfg = cfg
	}
	if a.dbPath != "" {
		a.cfg.DBPath = a.dbPath
	}
	if a.backend != "" {
		a.cfg.Backend = a.backend
	}
	if a.logLevel != "" {
		if err := a.cfg.SetLogLevel(a.logLevel); err != nil {
			return nil, err
		}
	}

	out := a.logOut
	if out == nil {
		out = os.Stderr
	}
	a.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: a.cfg.LogLevel}))

	if a.gateway == nil {
		gw, err := a.cfg.OpenGateway(a.logger)
		if err != nil {
			return nil, err
		}
		a.gateway = gw
		a.ownsGW = true
		a.logger.Debug("opened store", "backend", a.cfg.Backend, "location", a.cfg.Location())
	}

	a.registry = prometheus.NewRegistry()
	a.store = cache.NewStore(repository.New(a.gateway), cache.Options{
		Logger:  a.logger,
		Metrics: cache.NewMetrics(a.registry),
	})
	return a.store, nil
}

func (a *app) close() {
	if a.ownsGW && a.gateway != nil {
		if err := a.gateway.Close(); err != nil && a.logger != nil {
			a.logger.Warn("failed to close store", "error", err)
		}
	}
}

func (a *app) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// NewRootCmd creates the rapport command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rapport",
		Short: "Personal relationship manager",
		Long: `Rapport keeps track of the people in your life.

Record contacts, log interactions, set reminders, save conversation
topics, and plan gifts. Data lives in a local SQLite database by default;
set RAPPORT_BACKEND to badger, rest, or memory to change that.

Examples:
  rapport contact add --name "Ada Lovelace" --birthday 1815-12-10
  rapport reminder list --overdue
  rapport birthdays --days 14
  rapport contact import contacts.csv
  rapport graph -o network.dot
  rapport mcp`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.dbPath, "db-path", "", "Database path (default: $XDG_DATA_HOME/rapport/rapport.db)")
	cmd.PersistentFlags().StringVar(&a.backend, "backend", "", "Storage backend: sqlite, badger, rest, or memory")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, or error")

	cmd.AddCommand(newContactCmd(a))
	cmd.AddCommand(newInteractionCmd(a))
	cmd.AddCommand(newReminderCmd(a))
	cmd.AddCommand(newTopicCmd(a))
	cmd.AddCommand(newGiftCmd(a))
	cmd.AddCommand(newBirthdaysCmd(a))
	cmd.AddCommand(newDashboardCmd(a))
	cmd.AddCommand(newGraphCmd(a))
	cmd.AddCommand(newTUICmd(a))
	cmd.AddCommand(newMCPCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	a := &app{}
	defer a.close()
	return newRootCmd(a).Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rapport %s\n", versionInfo.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "Built:  %s\n", versionInfo.Date)
		},
	}
}
