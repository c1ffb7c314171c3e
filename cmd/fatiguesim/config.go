package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"fatiguecore/internal/domain"
)

// overlayConfig merges a YAML file's fields onto a preset's Parameters,
// letting an operator override individual tunables without hand-writing a
// full preset (grounded on the teacher pack's viper/mapstructure config
// idiom — flyingrobots-go-redis-work-queue/internal/config).
func overlayConfig(base domain.Parameters, configPath string) (domain.Parameters, error) {
	if configPath == "" {
		return base, nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return domain.Parameters{}, fmt.Errorf("read config %s: %w", configPath, err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	setDefaults(v, base)

	if err := v.ReadInConfig(); err != nil {
		return domain.Parameters{}, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var out domain.Parameters
	if err := v.Unmarshal(&out); err != nil {
		return domain.Parameters{}, fmt.Errorf("unmarshal config %s: %w", configPath, err)
	}
	return out, nil
}

// setDefaults seeds viper with the preset's values so a config file only
// needs to name the fields it wants to override.
func setDefaults(v *viper.Viper, p domain.Parameters) {
	v.SetDefault("preset", p.Preset)
	v.SetDefault("homeostatic", p.Homeostatic)
	v.SetDefault("circadian", p.Circadian)
	v.SetDefault("inertia", p.Inertia)
	v.SetDefault("weights", p.Weights)
	v.SetDefault("sleep_debt", p.SleepDebt)
	v.SetDefault("jet_lag", p.JetLag)
	v.SetDefault("sleep_quality", p.Quality)
	v.SetDefault("risk_thresholds", p.Risk)
	v.SetDefault("stride_minutes", p.StrideMinutes)
}
