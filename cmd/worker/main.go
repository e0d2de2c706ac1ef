package main

import (
	"fmt"
	"os"

	"go-hrms/internal/app"
	"go-hrms/internal/bootstrap"
	"go-hrms/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "hrms-worker",
	Short:        "Relays outbox events to Kafka",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", cfgPath, err)
		}

		logger, err := bootstrap.NewLogger(cfg.Logger)
		if err != nil {
			return err
		}
		defer logger.Sync()
		zap.ReplaceGlobals(logger)

		return app.RunWorker(cfg, logger)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "conf", "c", "hrms.yaml", "path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
