package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hellausefulsoftware/codescribe/internal/app"
	"github.com/hellausefulsoftware/codescribe/internal/config"
	"github.com/hellausefulsoftware/codescribe/internal/logging"
)

const version = "1.0.0"

func main() {
	var (
		configPath string
		port       string
		logLevel   string
		logJSON    bool
		logFile    string
	)

	rootCmd := &cobra.Command{
		Use:           "codescribe",
		Short:         "AI teammate for Linear issues",
		Long:          `CodeScribe listens for mentions in Linear issue comments and answers with status checks, repository and commit reports, progress and team analytics, conversations and GitHub pull request reviews.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Server.Port = port
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if flags.Changed("log-json") {
				cfg.Logging.JSON = logJSON
			}
			if flags.Changed("log-file") {
				cfg.Logging.File = logFile
			}

			if err := logging.Initialize(&logging.Config{
				Level:      logging.ParseLevel(cfg.Logging.Level),
				Output:     os.Stderr,
				JSONFormat: cfg.Logging.JSON,
				File:       cfg.Logging.File,
			}); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			defer func() { _ = logging.Close() }()

			logging.Info("Starting codescribe", "version", version, "port", cfg.Server.Port)

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $CODESCRIBE_CONFIG)")
	rootCmd.Flags().StringVar(&port, "port", "", "Listen port (overrides $PORT)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Set logging level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Also write logs to this rotating file")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.Error("Startup failed", "error", err)
		os.Exit(1)
	}
}
