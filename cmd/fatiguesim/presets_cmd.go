package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fatiguecore/internal/domain"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in parameter presets and their key tunables",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := []domain.Preset{
				domain.PresetDefault,
				domain.PresetConservative,
				domain.PresetLiberal,
				domain.PresetResearch,
			}
			for _, name := range presets {
				p, err := domain.PresetParameters(name)
				if err != nil {
					return err
				}
				fmt.Printf("%-14s tau_wake=%.1fh  baseline_sleep_need=%.1fh  time_on_task=%.4f/h  low_min=%.0f  stride=%.0fm\n",
					p.Preset, p.Homeostatic.TauWakeHours, p.Homeostatic.BaselineSleepNeed,
					p.Weights.TimeOnTaskPerHr, p.Risk.LowMin, p.StrideMinutes)
			}
			return nil
		},
	}
}
