package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bynikesh/findmyai-sub001/internal/config"
	"github.com/bynikesh/findmyai-sub001/internal/container"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/spf13/cobra"
)

var (
	output   = "text" // "text" or "json"
	logLevel = "warn"
)

var rootCmd = &cobra.Command{
	Use:   "findmyai",
	Short: "FindMyAI operator CLI - run catalog jobs against the configured database",
	Long: `FindMyAI operator CLI runs the same trending and import jobs as the
admin API, directly against the database configured in the environment (.env).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level: debug, info, warn, error")

	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importLogsCmd)
	rootCmd.AddCommand(promoteAdminCmd)
	rootCmd.AddCommand(reindexCmd)
}

// withContainer loads configuration, builds the service graph and runs fn
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.Initialize(logLevel, "-"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	ctx := cmd.Context()
	c, err := container.Build(ctx, cfg)
	defer c.Cleanup(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	return fn(ctx, c)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
