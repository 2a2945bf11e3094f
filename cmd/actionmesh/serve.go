package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/actionmesh/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, os.Stdout)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Address
			}

			srv := server.New(a.mesh, func(o *server.Options) {
				o.Logger = a.logger
				o.Probe = a.probe
				o.ReadTimeout = a.cfg.Server.ReadTimeout
				o.WriteTimeout = a.cfg.Server.WriteTimeout
				if a.registry != nil {
					o.Gatherer = prometheus.Gatherer(a.registry)
				}
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.logger.Info("server.shutdown")
			return srv.Shutdown(shutdownCtx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.address)")
	return serve
}
