package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentgate/internal/http"
)

var (
	serveFlags lifecycleFlags
	serveHost  string
	servePort  int
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation API over HTTP",
	Long: `Start the HTTP API:

  GET  /health                 liveness and telemetry health
  GET  /metrics                Prometheus metrics
  POST /api/v1/validate        grade one record
  POST /api/v1/validate/batch  grade many records

Set server.auth_token (or CONTENTGATE_SERVER_AUTH_TOKEN) to require a bearer
token on /api/v1.

Examples:
  # Serve on the configured address
  contentgate serve

  # Listen on all interfaces, port 9000
  contentgate serve --host 0.0.0.0 --port 9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default: server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: server.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	phases, opts, err := serveFlags.resolve(cmd, a.cfg.Validation)
	if err != nil {
		return err
	}

	cfg := http.NewConfig(a.cfg.Server)
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	srv, err := http.NewServer(a.pipeline, a.logger, cfg,
		http.WithGatherer(a.registry),
		http.WithTelemetry(a.telemetry),
		http.WithDefaults(http.Defaults{
			Phases:  phases,
			Options: opts,
			Workers: a.cfg.Validation.Workers,
		}),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info(ctx, "shutdown signal received")
	if err := srv.Shutdown(context.Background()); err != nil {
		a.logger.Error(ctx, "http shutdown failed", zap.Error(err))
		return err
	}
	return <-errCh
}
