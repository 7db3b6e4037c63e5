package cmd

import (
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sqlinsight/sqlinsight/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer over HTTP",
	Long: `Start an HTTP server exposing the analyzer:

  POST /v1/analyze   analyze a SQL document ({"sql": "...", "dialect": "mysql"})
  GET  /v1/dialects  list supported dialects
  GET  /healthz      liveness probe`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: config, then :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := api.NewServer(cfg, slog.Default())
	slog.Info("HTTP API listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		return errors.Wrap(err, "serve HTTP")
	}
	return nil
}
