package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ima-dev/ima/internal/demo"
	"github.com/ima-dev/ima/pkg/frame"
	"github.com/ima-dev/ima/pkg/inspect"
	"github.com/ima-dev/ima/pkg/metrics"
)

func serveCmd() *cobra.Command {
	var (
		port     int
		host     string
		cells    int
		rate     int
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the counter grid with a live inspector",
		Long: `Run the counter grid on a frame loop and serve the inspector.

The inspector serves the current document, engine statistics, a
websocket stream of tick snapshots and Prometheus metrics.

Examples:
  ima serve
  ima serve --port=8080 --cells=500
  ima serve --rate=120 --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(logLevel)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Inspect.Port = port
			}
			if host != "" {
				cfg.Inspect.Host = host
			}
			if cells > 0 {
				cfg.Demo.Cells = cells
			}
			if rate > 0 {
				cfg.Engine.FrameRate = rate
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			loop := frame.NewLoop(
				frame.WithRate(cfg.Engine.FrameRate),
				frame.WithLogger(logger),
			)
			engine, err := newEngine(cfg, logger, loop)
			if err != nil {
				return err
			}
			grid := demo.CounterGrid(engine, cfg.Demo.Cells)

			opts := []inspect.Option{
				inspect.WithAddress(cfg.Address()),
				inspect.WithLogger(logger),
			}
			if cfg.MetricsEnabled() {
				rec := metrics.Attach(engine, metrics.WithNamespace(cfg.Metrics.Namespace))
				opts = append(opts, inspect.WithMetrics(rec.Handler()))
			}
			server := inspect.New(engine, loop, opts...)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := loop.Start(ctx); err != nil {
				return err
			}
			go refresh(ctx, loop, grid)

			printBanner()
			fmt.Println()
			success("Serving %d sections at %d fps", cfg.Demo.Cells, cfg.Engine.FrameRate)
			info("Inspector: http://%s", cfg.Address())
			if cfg.MetricsEnabled() {
				info("Metrics:   http://%s/metrics", cfg.Address())
			} else {
				warn("Metrics are disabled")
			}
			fmt.Println()

			return server.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Inspector port (default from ima.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Inspector host (default from ima.json)")
	cmd.Flags().IntVarP(&cells, "cells", "n", 0, "Number of counter sections")
	cmd.Flags().IntVarP(&rate, "rate", "r", 0, "Frames per second")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	return cmd
}

// refresh copies engine statistics into the grid's panel twice a second.
func refresh(ctx context.Context, loop *frame.Loop, grid *demo.Grid) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := loop.Post(grid.Refresh); err != nil {
				return
			}
		}
	}
}
