package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/config"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/engine"
)

var (
	configPath  string
	catalogPath string
	journalPath string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "permctl",
	Short: "Android permission grouping and role policy toolkit",
	Long: "Groups the permissions requested by installed packages the way the permission UI shows them,\n" +
		"keeps those groups live as the package catalog changes, and manages role holders with their\n" +
		"app-op side effects in a hash-chained journal.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config YAML (default ~/.permctl/config.yaml)")
	pf.StringVar(&catalogPath, "catalog", "", "Path to package catalog YAML (overrides config)")
	pf.StringVar(&journalPath, "journal", "", "Path to journal JSONL (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openEngine() (*engine.Engine, error) {
	return engine.New(engine.Options{
		ConfigPath:  configPath,
		CatalogPath: catalogPath,
		JournalPath: journalPath,
		LogLevel:    logLevel,
	})
}

// resolveJournal finds the journal path without opening it.
func resolveJournal() (string, error) {
	if journalPath != "" {
		return journalPath, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return "", err
	}
	return config.ExpandHome(cfg.Journal), nil
}
