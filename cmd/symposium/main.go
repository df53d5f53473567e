package main

import (
	"context"
	"fmt"
	"os"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const programName = "symposium"

var (
	globalFlags = struct {
		debug   bool
		envFile string
	}{}
)

type configKey struct{}

func configFromContext(ctx context.Context) dto.Config {
	cfg, _ := ctx.Value(configKey{}).(dto.Config)
	return cfg
}

func setupLogging(cfg dto.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	if globalFlags.debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetOutput(os.Stdout)
}

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Submission and voting service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), configFromContext(cmd.Context()))
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.envFile, "env-file", ".env", "path to a .env file, skipped when missing")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := dto.LoadConfig(globalFlags.envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		setupLogging(cfg)

		cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
		return nil
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(seedCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
