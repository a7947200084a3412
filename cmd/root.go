package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/config"
	"github.com/abhisek/assessor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "assessor",
	Short: "Adaptive assessment and mastery verification engine",
	Long: "assessor selects questions at the right difficulty, tracks confidence calibration and ability,\n" +
		"and verifies mastery of learning objectives against time-spaced evidence.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ASSESSOR_DB env var)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(followupCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(calibrationCmd)
	rootCmd.AddCommand(abilityCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies the --db flag. SQLite without
// an explicit DSN resolves to the default XDG path.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	if cfg.Storage.Driver == store.DriverSQLite {
		p, err := resolveDBPath(cmd, cfg.Storage.DSN)
		if err != nil {
			return cfg, err
		}
		cfg.Storage.DSN = p
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured DSN, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
