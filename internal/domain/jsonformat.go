package domain

import (
	"encoding/json"
	"math"
)

// round3 rounds a float64 to the nearest 3 decimal places for JSON output (§6's
// "floating-point values with >=3 fractional digits" requirement), without
// implying precision the model does not have.
func round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*1000) / 1000
}

// MarshalJSON rounds the fields that feed risk thresholds or downstream
// comparisons to 3 decimal places on the wire, per §6.
func (p PerformancePoint) MarshalJSON() ([]byte, error) {
	type alias PerformancePoint
	return json.Marshal(struct {
		alias
		S                    float64 `json:"s"`
		C                    float64 `json:"c"`
		W                    float64 `json:"w"`
		Performance          float64 `json:"performance"`
		CumulativeSleepDebtH float64 `json:"cumulative_sleep_debt_h"`
	}{
		alias:                alias(p),
		S:                    round3(p.S),
		C:                    round3(p.C),
		W:                    round3(p.W),
		Performance:          round3(p.Performance),
		CumulativeSleepDebtH: round3(p.CumulativeSleepDebtH),
	})
}

// MarshalJSON rounds the S/C snapshot to 3 decimal places on the wire.
func (e PinchEvent) MarshalJSON() ([]byte, error) {
	type alias PinchEvent
	return json.Marshal(struct {
		alias
		S float64 `json:"s"`
		C float64 `json:"c"`
	}{
		alias: alias(e),
		S:     round3(e.S),
		C:     round3(e.C),
	})
}

// MarshalJSON rounds EffectiveHours to 3 decimal places on the wire.
func (b SleepBlock) MarshalJSON() ([]byte, error) {
	type alias SleepBlock
	return json.Marshal(struct {
		alias
		EffectiveHours float64 `json:"effective_hours"`
	}{
		alias:          alias(b),
		EffectiveHours: round3(b.EffectiveHours),
	})
}

// MarshalJSON rounds the debt-breakdown components to 3 decimal places.
func (d SleepDebtBreakdown) MarshalJSON() ([]byte, error) {
	type alias SleepDebtBreakdown
	return json.Marshal(struct {
		alias
		AccumulatedH float64 `json:"accumulated_h"`
		DecayedH     float64 `json:"decayed_h"`
		NetH         float64 `json:"net_h"`
	}{
		alias:        alias(d),
		AccumulatedH: round3(d.AccumulatedH),
		DecayedH:     round3(d.DecayedH),
		NetH:         round3(d.NetH),
	})
}

// MarshalJSON rounds the summary performance/debt fields to 3 decimal
// places.
func (t DutyTimeline) MarshalJSON() ([]byte, error) {
	type alias DutyTimeline
	return json.Marshal(struct {
		alias
		MinPerformance               float64 `json:"min_performance"`
		AvgPerformance               float64 `json:"avg_performance"`
		LandingPerformance           float64 `json:"landing_performance"`
		WOCLEncroachmentH            float64 `json:"wocl_encroachment_h"`
		CumulativeSleepDebtAtRelease float64 `json:"cumulative_sleep_debt_at_release"`
	}{
		alias:                        alias(t),
		MinPerformance:               round3(t.MinPerformance),
		AvgPerformance:               round3(t.AvgPerformance),
		LandingPerformance:           round3(t.LandingPerformance),
		WOCLEncroachmentH:            round3(t.WOCLEncroachmentH),
		CumulativeSleepDebtAtRelease: round3(t.CumulativeSleepDebtAtRelease),
	})
}

// MarshalJSON rounds the roster-level summary fields to 3 decimal places.
func (a MonthlyAnalysis) MarshalJSON() ([]byte, error) {
	type alias MonthlyAnalysis
	return json.Marshal(struct {
		alias
		AvgSleepPerNightH float64 `json:"avg_sleep_per_night_h"`
		MaxSleepDebtH     float64 `json:"max_sleep_debt_h"`
	}{
		alias:             alias(a),
		AvgSleepPerNightH: round3(a.AvgSleepPerNightH),
		MaxSleepDebtH:     round3(a.MaxSleepDebtH),
	})
}
