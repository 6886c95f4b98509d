package main

import (
	"fmt"
	"os"

	"payment-relay/internal/config"
	"payment-relay/pkg/logging"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "payment-relay",
		Short:        "Midtrans payment relay: Snap tokens, status checks and webhook persistence",
		Version:      Version,
		SilenceUsage: true,
		// Running the binary with no subcommand starts the server
		RunE: runServe,
	}
	rootCmd.Flags().AddFlagSet(serveFlags())

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and initializes logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	logging.InitLogging()
	return cfg, nil
}
