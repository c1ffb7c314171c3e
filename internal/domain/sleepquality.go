package domain

import "time"

// QualityContext carries the situational inputs §4.3 needs beyond the raw
// interval: how long since the pilot came off duty, how long until the next
// obligation, whether this is a recovery (rest-day) sleep, and the
// circadian phase at the moment of waking. WakeAnchorPhase is not read by
// this calculator or elsewhere in the package; the duty simulator derives
// Process W's wake phase itself.
type QualityContext struct {
	TimeSincePreviousReleaseH float64
	TimeUntilNextReportH      float64
	IsRecovery                bool
	WakeAnchorPhase           float64
}

// EffectiveHours implements §4.3: raw duration times a chain of
// independent, multiplicative factors (never additive — each factor is
// individually testable, following the teacher's breakdown-struct idiom for
// multi-component scores, generalized here to a factor chain since §4.3
// requires the chain itself, not just the final number, to be auditable).
// The result never exceeds raw duration, and the combined factor is clamped
// to [0.65, 1.10], so the effective ratio never falls below 0.65 * base
// efficiency (§4.3).
func EffectiveHours(startUTC, endUTC time.Time, locationTZ string, env Environment, ctx QualityContext, p Parameters) (float64, error) {
	rawHours := endUTC.Sub(startUTC).Hours()
	if rawHours <= 0 {
		return 0, NewError(KindRosterValidation, "sleep block end must be after start")
	}

	base, ok := p.Quality.BaseEfficiency[env]
	if !ok {
		base = p.Quality.BaseEfficiency[EnvironmentHotel]
	}

	woclFraction, err := woclOverlapFraction(startUTC, endUTC, locationTZ, p.Circadian)
	if err != nil {
		return 0, err
	}
	woclFactor := 1.0 - p.Quality.MisalignmentMaxPenalty*(1-woclFraction)

	lateFactor, err := lateOnsetFactor(startUTC, locationTZ, p.Quality)
	if err != nil {
		return 0, err
	}

	recoveryFactor := 1.0
	if ctx.IsRecovery {
		switch {
		case ctx.TimeSincePreviousReleaseH < 2:
			recoveryFactor = p.Quality.RecoveryBoostUnder2h
		case ctx.TimeSincePreviousReleaseH < 4:
			recoveryFactor = p.Quality.RecoveryBoostUnder4h
		}
	}

	pressureFactor := timePressureFactor(ctx.TimeUntilNextReportH, p.Quality)

	shortSleepFactor := insufficientFactor(rawHours, p.Quality)

	combined := woclFactor * lateFactor * recoveryFactor * pressureFactor * shortSleepFactor
	floor := p.Quality.FactorFloor
	ceil := p.Quality.FactorCeil
	if combined < floor {
		combined = floor
	}
	if combined > ceil {
		combined = ceil
	}

	effective := rawHours * base * combined
	if effective > rawHours {
		effective = rawHours
	}
	return effective, nil
}

// circadianMisalignmentThreshold is the combined WOCL-outside/late-onset
// factor at or below which a sleep block is flagged as circadian-disrupted
// (spec.md's S2 walkthrough names 0.87 as the factor a late-afternoon
// recovery nap is penalised to).
const circadianMisalignmentThreshold = 0.87

// misalignmentFactor isolates the two purely circadian-phase components of
// EffectiveHours' factor chain (lying outside the WOCL and late onset) from
// the duty-logistics components (time pressure, insufficient duration,
// recovery boost), so callers can flag "this block is disrupted by
// circadian phase" independently of "this block is merely short".
func misalignmentFactor(startUTC, endUTC time.Time, locationTZ string, p Parameters) (float64, error) {
	woclFraction, err := woclOverlapFraction(startUTC, endUTC, locationTZ, p.Circadian)
	if err != nil {
		return 0, err
	}
	woclFactor := 1.0 - p.Quality.MisalignmentMaxPenalty*(1-woclFraction)

	lateFactor, err := lateOnsetFactor(startUTC, locationTZ, p.Quality)
	if err != nil {
		return 0, err
	}
	return woclFactor * lateFactor, nil
}

// woclOverlapFraction is the fraction (0..1) of [start, end) coinciding
// with the WOCL window in locationTZ.
func woclOverlapFraction(start, end time.Time, tz string, c Circadian) (float64, error) {
	overlapH, err := WOCLOverlapHours(start, end, tz, c)
	if err != nil {
		return 0, err
	}
	total := end.Sub(start).Hours()
	if total <= 0 {
		return 0, nil
	}
	f := overlapH / total
	if f > 1 {
		f = 1
	}
	return f, nil
}

// lateOnsetFactor scales from 1.00 down to p.LateOnsetMinFactor as
// sleep-onset drifts past 01:00 local (§4.1). Onset before the late-onset
// hour always scores 1.00; every hour past it loses linearly, bottoming out
// at the configured minimum by 04:00.
func lateOnsetFactor(startUTC time.Time, tz string, q SleepQualityParams) (float64, error) {
	local, err := ToLocal(startUTC, tz)
	if err != nil {
		return 0, err
	}
	onsetHour := localHourOfDay(local)

	// Onset in the early-morning band (00:00-09:00) is "late" relative to a
	// night-before bedtime; normalize so e.g. 02:00 reads as 2h past onset.
	var hoursPastOnset float64
	switch {
	case onsetHour >= q.LateOnsetHour && onsetHour < 9:
		hoursPastOnset = onsetHour - q.LateOnsetHour
	case onsetHour < q.LateOnsetHour:
		hoursPastOnset = 0
	default:
		hoursPastOnset = 0
	}

	const spreadHours = 3.0 // fully bottomed out 3h past the late-onset hour
	frac := hoursPastOnset / spreadHours
	if frac > 1 {
		frac = 1
	}
	return 1.0 - frac*(1.0-q.LateOnsetMinFactor), nil
}

// timePressureFactor is 1.00 when the pilot has at least the configured
// full-credit hours until the next duty, decreasing linearly to the
// configured minimum as imminence increases to zero (§4.1).
func timePressureFactor(hoursUntilNext float64, q SleepQualityParams) float64 {
	if hoursUntilNext >= q.TimePressureFullHours {
		return 1.0
	}
	if hoursUntilNext <= 0 {
		return q.TimePressureMinFactor
	}
	frac := hoursUntilNext / q.TimePressureFullHours
	return q.TimePressureMinFactor + frac*(1.0-q.TimePressureMinFactor)
}

// insufficientFactor penalizes raw durations under the configured
// threshold (6h), scaling from the configured minimum (at duration 0) up to
// 1.00 at the threshold (§4.1).
func insufficientFactor(rawHours float64, q SleepQualityParams) float64 {
	if rawHours >= q.InsufficientThresholdHours {
		return 1.0
	}
	if rawHours <= 0 {
		return q.InsufficientMinFactor
	}
	frac := rawHours / q.InsufficientThresholdHours
	return q.InsufficientMinFactor + frac*(1.0-q.InsufficientMinFactor)
}
