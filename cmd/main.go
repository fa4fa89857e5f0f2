package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/sprint-backend/internal/app"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "sprint",
	Short:         "Sprint assistant backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, pulseCmd, migrateCmd, opsCmd, webhookCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sprint: %v\n", err)
		os.Exit(1)
	}
}

// withApp builds the full app, runs fn, then tears it down.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("Failed to initialize app", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()
	return fn(a)
}

func withLogger(fn func(log *logger.Logger) error) error {
	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	return fn(log)
}
