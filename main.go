// Command soulsync is a local journaling and mood-tracking app. With no
// arguments it runs the terminal UI; subcommands cover scripted use.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/soulsync/internal/config"
	"github.com/sadopc/soulsync/internal/journal"
	"github.com/sadopc/soulsync/internal/logging"
	"github.com/sadopc/soulsync/internal/store"
	"github.com/sadopc/soulsync/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run builds the command tree, executes args and releases whatever the
// command opened.
func run(args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

// cli holds the global flags and the resources opened for one invocation.
type cli struct {
	configPath string
	dbPath     string

	cfg  *config.Config
	log  *zap.Logger
	db   *store.SQLite
	repo *store.Repository
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "soulsync",
		Short: "A private journal with mood tracking",
		Long: `SoulSync keeps a local journal of dated entries with optional mood ratings.

Run without arguments to open the terminal UI.

Examples:
  # Open the journal
  soulsync

  # Write a quick entry with a mood
  soulsync add --content "Long walk after work" --mood 4 --tags walk,evening

  # Back up everything to a JSON file
  soulsync export`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runTUI,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default <user config dir>/soulsync/config.yaml)")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite database path (overrides data.db_path)")

	root.AddCommand(c.exportCmd())
	root.AddCommand(c.importCmd())
	root.AddCommand(c.statsCmd())
	root.AddCommand(c.addCmd())
	root.AddCommand(c.chatCmd())
	return root
}

// setup loads config, starts logging and opens the repository.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.Data.DBPath = c.dbPath
	}
	c.cfg = cfg

	// The TUI owns the terminal, so logs go to a file unless one is configured.
	if cfg.Log.File == "" {
		if f, err := logging.DefaultFile(); err == nil {
			cfg.Log.File = f
		}
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.log = logger

	dbPath := cfg.Data.DBPath
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return err
		}
	}
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	c.db = db

	repo, err := store.Open(db,
		store.WithLogger(logger),
		store.WithSystemTheme(journal.Theme(cfg.UI.SystemTheme)),
	)
	if err != nil {
		return err
	}
	c.repo = repo
	c.log.Debug("started", zap.String("command", cmd.Name()), zap.String("db", dbPath))
	return nil
}

func (c *cli) close() {
	if c.db != nil {
		if err := c.db.Close(); err != nil && c.log != nil {
			c.log.Warn("closing database", zap.Error(err))
		}
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func (c *cli) runTUI(_ *cobra.Command, _ []string) error {
	app := tui.NewApp(c.repo, tui.Options{
		Chat: c.cfg.Chat,
		Log:  c.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
