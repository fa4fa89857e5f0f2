package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/sprint-backend/internal/app"
	"github.com/yungbote/sprint-backend/internal/clients/redis"
	"github.com/yungbote/sprint-backend/internal/clients/telegram"
	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the webhook and pulse trigger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := a.Start(cmd.Context()); err != nil {
				return err
			}
			return a.Run(cmd.Context())
		})
	},
}

var pulseManual bool

var pulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Run one pulse now and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			report, err := a.Services.Scheduler.Run(cmd.Context(), pulseManual)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLogger(func(log *logger.Logger) error {
			cfg := app.LoadConfig(log)
			theDB, err := app.OpenDB(log, cfg.DBDriver)
			if err != nil {
				return err
			}
			if err := app.Migrate(theDB, cfg.DBDriver); err != nil {
				return err
			}
			log.Info("Migration complete", "driver", cfg.DBDriver)
			return nil
		})
	},
}

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Operator tools",
}

var opsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Stream operator reports from redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLogger(func(log *logger.Logger) error {
			bus, err := redis.NewOpsBus(log)
			if err != nil {
				return err
			}
			defer bus.Close()
			out := cmd.OutOrStdout()
			if err := bus.StartForwarder(cmd.Context(), func(r messaging.OperatorReport) {
				fmt.Fprintln(out, r.Text())
			}); err != nil {
				return err
			}
			<-cmd.Context().Done()
			return nil
		})
	},
}

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram webhook",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set <public-url>",
	Short: "Point Telegram at <public-url>/api/webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLogger(func(log *logger.Logger) error {
			tg, err := telegram.NewFromEnv(log)
			if err != nil {
				return err
			}
			url := strings.TrimRight(args[0], "/") + "/api/webhook"
			secret := utils.GetEnv("TELEGRAM_WEBHOOK_SECRET", "", log)
			if err := tg.SetWebhook(cmd.Context(), url, secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "webhook set to %s\n", url)
			return nil
		})
	},
}

func init() {
	pulseCmd.Flags().BoolVar(&pulseManual, "manual", false, "treat every active user as due")
	opsCmd.AddCommand(opsTailCmd)
	webhookCmd.AddCommand(webhookSetCmd)
}
