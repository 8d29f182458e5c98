package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/talentflow/internal/config"
	"github.com/abhisek/talentflow/internal/logging"
	"github.com/abhisek/talentflow/internal/store"
)

var (
	cfg    = config.DefaultConfig()
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "talentflow",
	Short: "Build job assessments and collect candidate responses",
	Long: `TalentFlow — define per-job candidate assessments with conditional questions
and validation rules, and take them from the terminal with autosaved drafts.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	defer func() { _ = logging.Close(logger) }()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TALENTFLOW_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides TALENTFLOW_LOG_LEVEL)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(assessmentCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(responsesCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads .env, reads configuration and builds the logger before any
// command runs.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg = config.ConfigFromEnv()
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = l
	logger.WithFields(logrus.Fields{
		"command":        cmd.CommandPath(),
		"autosave_delay": cfg.AutosaveDelay,
	}).Debug("Configuration loaded")
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then TALENTFLOW_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore resolves the database path and opens the store.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.WithField("db", dbPath).Debug("Opened database")
	return st, nil
}
