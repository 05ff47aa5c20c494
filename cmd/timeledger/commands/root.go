// Package commands provides the timeledger CLI commands.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"timeledger/internal/app"
	"timeledger/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "timeledger",
	Short: "timeledger - personal time tracking with ledger sync",
	Long: `timeledger tracks work sessions per project. Start, pause and stop a
timer; finalized sessions go to a remote ledger (Google Sheets or MySQL)
when connected, or to a durable local cache when not. 'timeledger sync'
drains the cache into the ledger.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger; debug level with -v.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// initApp loads config and wires the application.
func initApp(ctx context.Context) (*app.App, error) {
	logger := newLogger()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, logger, cfg)
}
