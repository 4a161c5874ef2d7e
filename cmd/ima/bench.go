package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ima-dev/ima/internal/demo"
	"github.com/ima-dev/ima/pkg/frame"
	"github.com/ima-dev/ima/pkg/ima"
)

// benchResult summarizes a bench run.
type benchResult struct {
	Cells    int           `json:"cells"`
	Bindings int           `json:"bindings"`
	Rounds   int           `json:"rounds"`
	Ticks    int           `json:"ticks"`
	Min      time.Duration `json:"minNs"`
	P50      time.Duration `json:"p50Ns"`
	P95      time.Duration `json:"p95Ns"`
	Max      time.Duration `json:"maxNs"`
	Frame    time.Duration `json:"frameNs"`
	Failed   int           `json:"failed"`
}

func benchCmd() *cobra.Command {
	var (
		cells     int
		rounds    int
		maxFrames int
		asJSON    bool
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure how long a click takes to settle",
		Long: `Build the counter grid on a manually stepped frame driver, press
buttons in turn and report how long each press takes to settle.

A press opens a measurement span. Frames are stepped until the engine
observes a tick that mutates nothing and closes the span.

Examples:
  ima bench
  ima bench --cells=1000 --rounds=200
  ima bench --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(logLevel)
			if err != nil {
				return err
			}
			if cells > 0 {
				cfg.Demo.Cells = cells
			}
			if cfg.Demo.Cells == 0 {
				return fmt.Errorf("bench needs at least one cell")
			}

			frames := frame.NewManual(0)
			engine, err := newEngine(cfg, logger, frames)
			if err != nil {
				return err
			}
			grid := demo.CounterGrid(engine, cfg.Demo.Cells)

			res, err := runBench(engine, frames, grid, rounds, maxFrames)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printBench(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().IntVarP(&cells, "cells", "n", 0, "Number of counter sections (default from ima.json)")
	cmd.Flags().IntVar(&rounds, "rounds", 100, "Number of presses")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 10, "Frames to wait for a press to settle")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	return cmd
}

// runBench presses grid buttons round-robin and steps frames until each
// press settles.
func runBench(e *ima.Engine, frames *frame.Manual, grid *demo.Grid, rounds, maxFrames int) (benchResult, error) {
	res := benchResult{Cells: grid.Cells, Rounds: rounds}
	if _, err := frames.Run(1); err != nil {
		return res, err
	}

	durations := make([]time.Duration, 0, rounds)
	var frameTotal time.Duration
	for r := 0; r < rounds; r++ {
		grid.Press(r % grid.Cells)
		settled := false
		for f := 0; f < maxFrames; f++ {
			if err := frames.Step(); err != nil {
				return res, err
			}
			res.Ticks++
			s := e.Debug()
			frameTotal += s.FrameDuration
			if !s.Measuring {
				durations = append(durations, s.MeasuredDuration)
				settled = true
				break
			}
		}
		if !settled {
			return res, fmt.Errorf("press %d did not settle within %d frames", r, maxFrames)
		}
	}

	s := e.Debug()
	res.Bindings = s.Total()
	res.Failed = s.Failed
	if len(durations) == 0 {
		return res, nil
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	res.Min = durations[0]
	res.P50 = percentile(durations, 0.50)
	res.P95 = percentile(durations, 0.95)
	res.Max = durations[len(durations)-1]
	res.Frame = frameTotal / time.Duration(res.Ticks)
	return res, nil
}

// percentile returns the p-th value of sorted.
func percentile(sorted []time.Duration, p float64) time.Duration {
	i := int(p*float64(len(sorted)-1) + 0.5)
	return sorted[i]
}

func printBench(w io.Writer, res benchResult) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %d presses settled over %d sections\n", res.Rounds, res.Cells)
	fmt.Fprintf(w, "  Bindings:  %d\n", res.Bindings)
	fmt.Fprintf(w, "  Ticks:     %d (%.2f per press)\n", res.Ticks, float64(res.Ticks)/float64(max(res.Rounds, 1)))
	fmt.Fprintf(w, "  Settle:    min %s  p50 %s  p95 %s  max %s\n", res.Min, res.P50, res.P95, res.Max)
	fmt.Fprintf(w, "  Frame:     %s average\n", res.Frame)
	if res.Failed > 0 {
		fmt.Fprintf(w, "\033[33m⚠\033[0m %d bindings failed\n", res.Failed)
	}
}
