package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/verdant-ai/verdant/internal/webapi"
	"github.com/verdant-ai/verdant/internal/webserver"
)

var (
	servePort    int
	serveOrigins []string
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation engine over HTTP",
		Long: `Start a local HTTP server exposing the REST API: evaluation, comparison,
statistics, and history endpoints under /api. The server runs until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: serveCommandE,
	}

	cmd.Flags().IntVarP(&servePort, "port", "P", 0, "Port to listen on (default from config)")
	cmd.Flags().StringArrayVar(&serveOrigins, "allow-origin", nil, "CORS origin to allow (can be repeated)")

	return cmd
}

func serveCommandE(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	port := servePort
	if port == 0 {
		port = a.cfg.ServerPort
	}

	handlers := webapi.NewHandlers(a.cfg, a.store, a.engine, a.evaluator, a.generators)
	srv, err := webserver.New(webserver.Config{
		Port:           port,
		Handlers:       handlers,
		AllowedOrigins: serveOrigins,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
