package main

import (
	"fmt"
	"os"

	"github.com/open-edge-platform/content-resolver/internal/utils/config"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
	"github.com/spf13/cobra"
)

// Global flags
var (
	configFile string
	logLevel   string
	verbose    bool

	flagSettings = config.DefaultGlobalConfig()
	settings     *config.ConfigHelpers
)

func main() {
	if err := createRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// createRootCommand creates the root command with every subcommand attached
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "content-resolver",
		Short: "Query package analysis results and recommend component owners",
		Long: `content-resolver reads the configuration documents of a distribution
together with the analysis results produced for them, answers queries about
workloads, environments and views, and recommends an owner for every source
component of a view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Global settings file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides the settings file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	flagSettings.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(createValidateCommand())
	rootCmd.AddCommand(createQueryCommand())
	rootCmd.AddCommand(createOwnershipCommand())
	rootCmd.AddCommand(createVersionCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// attachLoggingHooks loads the settings and sets up logging before any
// command that does real work runs.
func attachLoggingHooks(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		if sub.Name() == "version" || sub.Name() == "help" {
			continue
		}
		sub.PersistentPreRunE = initialize
		attachLoggingHooks(sub)
	}
}

func initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig(configFile)
	if err != nil {
		return err
	}
	if err := cfg.OverrideFrom(cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if level := resolveRequestedLogLevel(cmd); level != "" {
		cfg.Logging.Level = level
	}
	z, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger.Init(z)

	settings = config.NewConfigHelpers(cfg)
	if settings.IsDebugMode() {
		z.Debugf("settings: arches=%v workers=%d config_dir=%s data=%s output=%s",
			cfg.AllowedArches, settings.Workers(), cfg.ConfigDir, cfg.DataFile, cfg.OutputDir)
	}
	return nil
}

// resolveRequestedLogLevel returns the level asked for on the command line,
// or "" to keep the settings file value.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed && f.Value.String() == "true" {
		return "debug"
	}
	return ""
}
