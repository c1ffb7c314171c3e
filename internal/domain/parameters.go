package domain

// =============================================================================
// HOMEOSTATIC (PROCESS S) CONSTANTS
// =============================================================================

// Preset is the identifier for one of the four built-in parameter bundles.
type Preset string

const (
	PresetDefault      Preset = "default"
	PresetConservative Preset = "conservative"
	PresetLiberal      Preset = "liberal"
	PresetResearch     Preset = "research"
)

// Homeostatic holds the Process-S tunables (Jewett & Kronauer 1999).
type Homeostatic struct {
	SMax              float64 `json:"s_max" mapstructure:"s_max"`
	SMin              float64 `json:"s_min" mapstructure:"s_min"`
	TauWakeHours      float64 `json:"tau_wake_hours" mapstructure:"tau_wake_hours"`
	TauSleepHours     float64 `json:"tau_sleep_hours" mapstructure:"tau_sleep_hours"`
	BaselineSleepNeed float64 `json:"baseline_sleep_need_hours" mapstructure:"baseline_sleep_need_hours"`
}

// Circadian holds the Process-C tunables. AcrophaseHours is the configured
// value (17.0); AcrophaseEffectiveHours is the internally-shifted value
// actually used in evaluation (§9 Open Question 1 — the shift is retained
// and exposed as a named parameter rather than silently baked in).
type Circadian struct {
	AcrophaseHours          float64 `json:"acrophase_hours" mapstructure:"acrophase_hours"`
	AcrophaseEffectiveHours float64 `json:"acrophase_effective_hours" mapstructure:"acrophase_effective_hours"`
	Amplitude               float64 `json:"amplitude" mapstructure:"amplitude"`
	AmplitudeEffective      float64 `json:"amplitude_effective" mapstructure:"amplitude_effective"`
	PeriodHours             float64 `json:"period_hours" mapstructure:"period_hours"`
	WOCLStartHour           float64 `json:"wocl_start_hour" mapstructure:"wocl_start_hour"`
	WOCLEndHour             float64 `json:"wocl_end_hour" mapstructure:"wocl_end_hour"`
}

// Inertia holds the Process-W tunables.
type Inertia struct {
	DurationMinutes float64 `json:"duration_minutes" mapstructure:"duration_minutes"`
	WMax            float64 `json:"w_max" mapstructure:"w_max"`
}

// IntegrationWeights holds the performance-integration weights (§4.5).
type IntegrationWeights struct {
	Homeostatic      float64 `json:"w_homeostatic" mapstructure:"w_homeostatic"`
	Circadian        float64 `json:"w_circadian" mapstructure:"w_circadian"`
	TimeOnTaskPerHr  float64 `json:"time_on_task_rate_per_hour" mapstructure:"time_on_task_rate_per_hour"`
}

// SleepDebtParams holds the sleep-debt accumulation/decay tunables (§4.7.c).
type SleepDebtParams struct {
	DecayRatePerDay float64 `json:"decay_rate_per_day" mapstructure:"decay_rate_per_day"`
}

// JetLagParams holds the circadian-adaptation rates (§4.5).
type JetLagParams struct {
	WestwardHoursPerDay float64 `json:"westward_hours_per_day" mapstructure:"westward_hours_per_day"`
	EastwardHoursPerDay float64 `json:"eastward_hours_per_day" mapstructure:"eastward_hours_per_day"`
}

// SleepQualityParams holds the multiplicative-factor bases for §4.3.
type SleepQualityParams struct {
	BaseEfficiency map[Environment]float64 `json:"base_efficiency" mapstructure:"base_efficiency"`

	MisalignmentMaxPenalty float64 `json:"circadian_misalignment_max_penalty" mapstructure:"circadian_misalignment_max_penalty"`

	LateOnsetMinFactor float64 `json:"late_onset_min_factor" mapstructure:"late_onset_min_factor"`
	LateOnsetHour      float64 `json:"late_onset_hour" mapstructure:"late_onset_hour"`

	RecoveryBoostUnder2h float64 `json:"recovery_boost_under_2h" mapstructure:"recovery_boost_under_2h"`
	RecoveryBoostUnder4h float64 `json:"recovery_boost_under_4h" mapstructure:"recovery_boost_under_4h"`

	TimePressureMinFactor float64 `json:"time_pressure_min_factor" mapstructure:"time_pressure_min_factor"`
	TimePressureFullHours float64 `json:"time_pressure_full_hours" mapstructure:"time_pressure_full_hours"`

	InsufficientThresholdHours float64 `json:"insufficient_threshold_hours" mapstructure:"insufficient_threshold_hours"`
	InsufficientMinFactor      float64 `json:"insufficient_min_factor" mapstructure:"insufficient_min_factor"`

	FactorFloor float64 `json:"factor_floor" mapstructure:"factor_floor"` // 0.65
	FactorCeil  float64 `json:"factor_ceil" mapstructure:"factor_ceil"`   // 1.10
}

// RiskThresholds buckets performance (0-100) into RiskLevel (§4.1).
type RiskThresholds struct {
	LowMin      float64 `json:"low_min" mapstructure:"low_min"`
	ModerateMin float64 `json:"moderate_min" mapstructure:"moderate_min"`
	HighMin     float64 `json:"high_min" mapstructure:"high_min"`
	CriticalMin float64 `json:"critical_min" mapstructure:"critical_min"`
}

// Classify returns the RiskLevel for a given landing/average performance
// value on the 0-100 scale.
func (r RiskThresholds) Classify(performance float64) RiskLevel {
	switch {
	case performance >= r.LowMin:
		return RiskLow
	case performance >= r.ModerateMin:
		return RiskModerate
	case performance >= r.HighMin:
		return RiskHigh
	case performance >= r.CriticalMin:
		return RiskCritical
	default:
		return RiskExtreme
	}
}

// Parameters is the complete, immutable tunable bundle threaded through
// every component. Construct via one of the PresetXxx() factories, or copy
// and modify a preset's returned value (Parameters is plain data, safe to
// copy).
type Parameters struct {
	Preset      Preset             `json:"preset" mapstructure:"preset"`
	Homeostatic Homeostatic        `json:"homeostatic" mapstructure:"homeostatic"`
	Circadian   Circadian          `json:"circadian" mapstructure:"circadian"`
	Inertia     Inertia            `json:"inertia" mapstructure:"inertia"`
	Weights     IntegrationWeights `json:"weights" mapstructure:"weights"`
	SleepDebt   SleepDebtParams    `json:"sleep_debt" mapstructure:"sleep_debt"`
	JetLag      JetLagParams       `json:"jet_lag" mapstructure:"jet_lag"`
	Quality     SleepQualityParams `json:"sleep_quality" mapstructure:"sleep_quality"`
	Risk        RiskThresholds     `json:"risk_thresholds" mapstructure:"risk_thresholds"`
	StrideMinutes float64          `json:"stride_minutes" mapstructure:"stride_minutes"`
}

// defaultQuality returns the §4.1 sleep-quality base-efficiency table
// shared by all presets (presets vary integration/risk tunables, not the
// peer-reviewed efficiency bases).
func defaultQuality() SleepQualityParams {
	return SleepQualityParams{
		BaseEfficiency: map[Environment]float64{
			EnvironmentHome:         0.95,
			EnvironmentHotel:        0.88,
			EnvironmentCrewHouse:    0.90,
			EnvironmentAirportHotel: 0.85,
			EnvironmentCrewRest:     0.70,
		},
		MisalignmentMaxPenalty:     0.15,
		LateOnsetMinFactor:         0.93,
		LateOnsetHour:              1.0,
		RecoveryBoostUnder2h:       1.05,
		RecoveryBoostUnder4h:       1.03,
		TimePressureMinFactor:      0.88,
		TimePressureFullHours:      6.0,
		InsufficientThresholdHours: 6.0,
		InsufficientMinFactor:      0.75,
		FactorFloor:                0.65,
		FactorCeil:                1.10,
	}
}

// PresetParameters returns the bundle identified by name. Returns an error
// for an unrecognized preset identifier (spec.md §6: "one of
// {default, conservative, liberal, research}").
func PresetParameters(p Preset) (Parameters, error) {
	switch p {
	case PresetDefault:
		return DefaultParameters(), nil
	case PresetConservative:
		return ConservativeParameters(), nil
	case PresetLiberal:
		return LiberalParameters(), nil
	case PresetResearch:
		return ResearchParameters(), nil
	default:
		return Parameters{}, NewError(KindRosterValidation, "unknown parameter preset: "+string(p))
	}
}

// DefaultParameters is the baseline bundle, calibrated to spec.md §4.1.
func DefaultParameters() Parameters {
	return Parameters{
		Preset: PresetDefault,
		Homeostatic: Homeostatic{
			SMax: 1.0, SMin: 0.0,
			TauWakeHours: 18.2, TauSleepHours: 4.2,
			BaselineSleepNeed: 8.0,
		},
		Circadian: Circadian{
			AcrophaseHours: 17.0, AcrophaseEffectiveHours: 16.0,
			Amplitude: 0.5, AmplitudeEffective: 0.55,
			PeriodHours: 24.0, WOCLStartHour: 2.0, WOCLEndHour: 6.0,
		},
		Inertia: Inertia{DurationMinutes: 30.0, WMax: 0.30},
		Weights: IntegrationWeights{
			Homeostatic: 0.6, Circadian: 0.4, TimeOnTaskPerHr: 0.008,
		},
		SleepDebt: SleepDebtParams{DecayRatePerDay: 0.5},
		JetLag:    JetLagParams{WestwardHoursPerDay: 1.5, EastwardHoursPerDay: 1.0},
		Quality:   defaultQuality(),
		Risk: RiskThresholds{
			LowMin: 75, ModerateMin: 65, HighMin: 55, CriticalMin: 45,
		},
		StrideMinutes: 5.0,
	}
}

// ConservativeParameters widens fatigue sensitivity: faster homeostatic
// build-up, stricter risk thresholds, slower debt decay. Intended for
// safety-margin-first review of a roster.
func ConservativeParameters() Parameters {
	p := DefaultParameters()
	p.Preset = PresetConservative
	p.Homeostatic.TauWakeHours = 16.5
	p.Homeostatic.BaselineSleepNeed = 8.5
	p.Weights.TimeOnTaskPerHr = 0.010
	p.SleepDebt.DecayRatePerDay = 0.35
	p.Risk = RiskThresholds{LowMin: 80, ModerateMin: 70, HighMin: 60, CriticalMin: 50}
	return p
}

// LiberalParameters narrows fatigue sensitivity relative to default: slower
// homeostatic build-up, looser risk thresholds, faster debt decay.
func LiberalParameters() Parameters {
	p := DefaultParameters()
	p.Preset = PresetLiberal
	p.Homeostatic.TauWakeHours = 20.0
	p.Homeostatic.BaselineSleepNeed = 7.5
	p.Weights.TimeOnTaskPerHr = 0.006
	p.SleepDebt.DecayRatePerDay = 0.65
	p.Risk = RiskThresholds{LowMin: 70, ModerateMin: 60, HighMin: 50, CriticalMin: 40}
	return p
}

// ResearchParameters matches DefaultParameters' integration behavior but
// narrows the stride to 1 minute for maximum timeline resolution, intended
// for model validation rather than operational review.
func ResearchParameters() Parameters {
	p := DefaultParameters()
	p.Preset = PresetResearch
	p.StrideMinutes = 1.0
	return p
}
