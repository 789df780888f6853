package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/helmcode/coderabbit-agent/pkg/mcpserver"
)

var serveMetricsAddr string

func NewServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
analyze_code, debug_code, optimize_code, complexity, cache_status and
clear_cache tools. Logs go to stderr.

Examples:
  coderabbit serve
  coderabbit serve --metrics-addr :9090 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, version)
		},
	}

	cmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics on (disabled when empty)")

	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, logger := newAgent(cfg)

	if serveMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: serveMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("serving metrics", slog.String("addr", serveMetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
		defer srv.Close()
	}

	s := mcpserver.NewServer(a, version, logger)
	logger.Info("starting MCP server on stdio", slog.String("version", version))
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("MCP server stopped: %w", err)
	}
	return nil
}
