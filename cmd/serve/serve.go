// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package serve

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/elastic/timeseries-optimizer/cmd/setup"
	"github.com/elastic/timeseries-optimizer/pkg/config"
	shrinkctl "github.com/elastic/timeseries-optimizer/pkg/controller/shrink"
	"github.com/elastic/timeseries-optimizer/pkg/dev"
	"github.com/elastic/timeseries-optimizer/pkg/server"
	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
	"github.com/elastic/timeseries-optimizer/pkg/utils/tracing"
)

var log = ulog.Log.WithName("serve")

// Command returns the cobra command starting the shrink API server.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the shrink API server",
		Long: `serve starts an HTTP server accepting shrink requests on /api/v1/shrink and /api/v1/shrink-by-date.
Requests run synchronously, the response is sent once the shrink reached a terminal state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}
	config.BindClusterFlags(cmd.Flags())
	config.BindServerFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command) error {
	cfg, tracer, err := setup.Load(cmd)
	if err != nil {
		return err
	}
	if tracer != nil {
		defer tracer.Close()
	}

	// update GOMAXPROCS to container cpu limit if necessary
	_, err = maxprocs.Set(maxprocs.Logger(func(s string, i ...any) {
		// maxprocs needs an sprintf format string with args, but our logger needs a string with optional key value pairs,
		// so we need to do this translation
		log.Info(fmt.Sprintf(s, i...))
	}))
	if err != nil {
		log.Error(err, "Error setting GOMAXPROCS")
		return err
	}

	ctx := signals.SetupSignalHandler()

	controller, esClient, err := shrinkctl.NewControllerFromConfig(cfg, tracer)
	if err != nil {
		log.Error(err, "Cannot create the Elasticsearch client")
		return err
	}
	defer esClient.Close()

	handler := server.NewHandler(controller, esClient, server.Options{
		ServeMetrics: cfg.MetricsPort == 0,
		Tracer:       tracer,
	})

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.New("api", cfg.HTTPListen, handler).Run(ctx)
	})
	if cfg.MetricsPort > 0 {
		group.Go(func() error {
			return server.NewMetricsServer(cfg.MetricsPort).Run(ctx)
		})
	}
	if dev.Enabled {
		group.Go(func() error {
			return runDebugServer(ctx, cfg.DebugHTTPListen)
		})
	}

	log.Info("Shrink API started", "elasticsearch.url", cfg.Elasticsearch.URL, "listen", cfg.HTTPListen)
	if err := group.Wait(); err != nil {
		tracing.CaptureError(ctx, err)
		log.Error(err, "Shrink API stopped")
		return err
	}
	return nil
}

// runDebugServer exposes pprof, only in development mode.
func runDebugServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return server.New("debug", addr, mux).Run(ctx)
}
