package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/config"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Server port (overrides PORT)")
	serveCmd.Flags().Bool("require-auth", false, "Reject requests without a session (overrides AUTH_REQUIRED)")
}

// loadConfig reads the environment and applies persistent flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.Storage.DataDir = dir
	}
	if dev, _ := cmd.Flags().GetBool("dev"); dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		cfg.Server.Port = f.Value.String()
	}
	if f := cmd.Flags().Lookup("require-auth"); f != nil && f.Changed {
		cfg.Auth.Required = f.Value.String() == "true"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		return srv.Close()
	case err := <-errChan:
		closeErr := srv.Close()
		if err != nil {
			return err
		}
		return closeErr
	}
}
