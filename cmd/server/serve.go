package main

import (
	"fmt"

	"payment-relay/internal/api"
	"payment-relay/internal/database"
	"payment-relay/internal/gateway"
	"payment-relay/internal/services"
	"payment-relay/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func serveFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.StringP("port", "p", "", "port to listen on (overrides PORT)")
	return fs
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().AddFlagSet(serveFlags())
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	if cfg.MidtransServerKey == "" {
		logging.Warnf("MIDTRANS_SERVER_KEY is not set, gateway calls will be rejected")
	}

	st, conns, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer conns.Close()

	var notifier services.UpdateNotifier
	if cfg.CallbackURL != "" {
		notifier = services.NewCallbackNotifier(cfg.CallbackURL, cfg.CallbackSecret)
		logging.Infof("Forwarding transaction updates to %s", cfg.CallbackURL)
	}

	service := services.NewTransactionService(gateway.NewMidtrans(cfg), st, notifier)

	gin.SetMode(cfg.Mode)
	r := api.NewRouter(cfg, service)

	logging.Infof("Starting server on port %s (store: %s, production gateway: %t)",
		cfg.Port, cfg.StoreDriver, cfg.MidtransIsProduction)

	if err := r.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
