// Command server runs the product review web app.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/product-review-hub/internal/config"
	"github.com/iliyamo/product-review-hub/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Product review and catalog web app",
	Long: `Serves the product catalog, comparison page and user reviews.

Without a subcommand the HTTP server is started.  Settings come from .env,
the YAML file given by --config (or APP_CONFIG) and environment variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (overrides APP_CONFIG)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// bootstrap loads configuration and builds the logger shared by every
// subcommand.
func bootstrap() (config.Config, *zap.Logger, error) {
	if configPath != "" {
		if err := os.Setenv("APP_CONFIG", configPath); err != nil {
			return config.Config{}, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.IsProduction(), cfg.LogDebug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
