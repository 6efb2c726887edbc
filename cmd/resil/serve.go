package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/infrastructure/httpapi"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for an organization",
		Long: `Serves simulations and forecasts over HTTP, with Prometheus metrics at /metrics.

Examples:
  resil serve --org acme
  resil serve --org acme --addr 127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if addr == "" {
					addr = d.Config.Server.Addr
				}
				if d.Config.Log.Level != "debug" {
					gin.SetMode(gin.ReleaseMode)
				}
				srv := httpapi.NewServer(httpapi.Handlers{
					Dependencies: d.Dependencies,
					Scenarios:    d.Scenarios,
					Forecasts:    d.Forecasts,
				},
					httpapi.WithMetrics(d.Metrics),
					httpapi.WithLogger(d.Logger),
					httpapi.WithVersion(version),
				)
				return srv.Run(cmd.Context(), addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")

	return cmd
}
