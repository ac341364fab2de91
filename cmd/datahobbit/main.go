// Package main provides the entry point for the datahobbit synthetic data generator.
package main

import (
	"fmt"
	"os"

	"github.com/TFMV/datahobbit/config"
	"github.com/TFMV/datahobbit/logger"
	"github.com/TFMV/datahobbit/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// cli carries state shared by every subcommand.
type cli struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

// Main entry point for datahobbit
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "datahobbit",
		Short: "datahobbit generates synthetic datasets from a schema",
		Long: `datahobbit generates synthetic tabular data from a column schema.
It writes delimited text or JSON lines to one file, or Parquet and Arrow IPC
files rolled at a size limit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "datahobbit.log", "Log file path")
	_ = c.v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = c.v.BindPFlag("log.path", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of datahobbit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "datahobbit v%s (built %s)\n", version.GetVersion(), version.GetBuildDate())
		},
	})

	rootCmd.AddCommand(newGenerateCommand(c))
	rootCmd.AddCommand(newTypesCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newVerifyCommand(c))
	rootCmd.AddCommand(newServeCommand(c))
	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}

// load reads the config file, applies flag overrides and initializes the logger.
func (c *cli) load() error {
	if c.configPath != "" {
		c.v.SetConfigFile(c.configPath)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", c.configPath, err)
		}
	}
	cfg, err := config.Decode(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger.ResetLogger()
	logger.SetLogPath(cfg.Log.Path)
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	c.log = logger.GetLogger()
	return nil
}
