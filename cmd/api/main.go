package main

import (
	"fmt"
	"os"

	"go-hrms/internal/app"
	"go-hrms/internal/bootstrap"
	"go-hrms/internal/config"
	"go-hrms/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version is set via ldflags during build.
	Version = "dev"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "hrms-api",
	Short: "Multi-tenant HR management API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hrms-api version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "hrms.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
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
	logger.Info("configuration loaded", zap.String("path", cfgPath), zap.String("version", Version))

	apperror.Init()
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()

	cleanup, err := app.BuildApp(r, cfg, logger)
	if err != nil {
		logger.Error("build app failed", zap.Error(err))
		return err
	}
	defer cleanup()

	return bootstrap.StartHTTPServer(r, cfg.Server, bootstrap.NewZapAuditLogger(logger))
}
