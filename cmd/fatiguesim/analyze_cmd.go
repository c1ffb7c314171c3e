package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fatiguecore/internal/airport"
	"fatiguecore/internal/domain"
	"fatiguecore/internal/rosterio"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		rosterPath   string
		airportsPath string
		presetName   string
		configPath   string
		strideFlag   string
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a fatigue simulation over a roster and write the resulting analysis as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()
			runID := uuid.New().String()
			sugar := logger.Sugar().With("run_id", runID)

			start := time.Now()

			roster, err := rosterio.Load(rosterPath)
			if err != nil {
				return fmt.Errorf("load roster: %w", err)
			}
			sugar.Infow("roster loaded", "roster_id", roster.RosterID, "duties", len(roster.Duties), "path", rosterPath)

			table, err := airport.Load(airportsPath)
			if err != nil {
				return fmt.Errorf("load airport table: %w", err)
			}
			sugar.Infow("airport table loaded", "entries", table.Len(), "path", airportsPath)

			preset, err := domain.PresetParameters(domain.Preset(presetName))
			if err != nil {
				return err
			}
			params, err := overlayConfig(preset, configPath)
			if err != nil {
				return err
			}

			var stride time.Duration
			if strideFlag != "" {
				stride, err = time.ParseDuration(strideFlag)
				if err != nil {
					return fmt.Errorf("invalid --stride: %w", err)
				}
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-stop
				sugar.Warn("cancellation requested, stopping at the next simulation step")
				cancel()
			}()

			analysis, err := domain.Analyze(ctx, roster, params, table.Resolve, stride)
			if err != nil && !domain.IsKind(err, domain.KindCancelled) {
				return fmt.Errorf("analyze: %w", err)
			}
			if err != nil {
				sugar.Warnw("analysis cancelled, writing partial result", "error", err)
			}

			sugar.Infow("analysis complete",
				"duties", len(analysis.DutyTimelines),
				"diagnostics", len(analysis.Diagnostics),
				"elapsed", time.Since(start).String(),
			)

			return writeAnalysis(analysis, outPath)
		},
	}

	cmd.Flags().StringVar(&rosterPath, "roster", "", "Roster CSV fixture path (required)")
	cmd.Flags().StringVar(&airportsPath, "airports", "", "Airport reference CSV path (required)")
	cmd.Flags().StringVar(&presetName, "preset", "default", "Parameter preset: default, conservative, liberal, research")
	cmd.Flags().StringVar(&configPath, "config", "", "Optional YAML file overlaying individual parameter fields")
	cmd.Flags().StringVar(&strideFlag, "stride", "", "Integration stride override, e.g. 5m (defaults to the preset's stride)")
	cmd.Flags().StringVar(&outPath, "out", "-", "Output file path (- for stdout)")
	cmd.MarkFlagRequired("roster")
	cmd.MarkFlagRequired("airports")

	return cmd
}

func writeAnalysis(analysis domain.MonthlyAnalysis, outPath string) error {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if outPath == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(outPath, data, 0644)
}
