package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zombie-detector/internal/config"
	"zombie-detector/internal/server"
)

// serve command flags
var serveListen string

// serveCmd runs the REST API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the zombie detection API server",
	Long: `Run the REST API server. The server exposes the detection endpoint,
the tracking queries and Prometheus metrics, and shuts down gracefully
on SIGINT/SIGTERM.

Examples:

  zombie-detector serve -c config.yaml
  zombie-detector serve --listen :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	states, err := config.LoadStates(cfg.Detection.StatesPath)
	if err != nil {
		return err
	}

	processor, tr, cleanup, err := buildProcessor(cfg, states, true, true, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg.Server, processor, tr, states, Version, logger)
	return srv.Start(ctx)
}
