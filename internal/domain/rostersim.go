package domain

import (
	"context"
	"math"
	"sort"
	"time"
)

// RosterSimResult is the output of SimulateRoster: one DutyTimeline per duty,
// the rest periods between them, the sleep-debt trajectory, and any
// non-fatal diagnostics accumulated along the way (§4.7).
type RosterSimResult struct {
	DutyTimelines       []DutyTimeline
	RestPeriods         []RestPeriod
	SleepDebtBreakdowns []SleepDebtBreakdown
	Diagnostics         []Diagnostic
}

// SimulateRoster implements §4.7: it walks a roster's duties in chronological
// order, generating the sleep inferred between each pair of duties (and a
// baseline block ahead of the first), carrying homeostatic pressure,
// circadian phase shift, and cumulative sleep debt from one duty to the
// next, and simulating each duty in turn.
func SimulateRoster(ctx context.Context, roster Roster, params Parameters) (RosterSimResult, error) {
	duties := make([]Duty, len(roster.Duties))
	copy(duties, roster.Duties)
	sort.Slice(duties, func(i, j int) bool { return duties[i].ReportUTC.Before(duties[j].ReportUTC) })

	if len(duties) == 0 {
		return RosterSimResult{}, NewError(KindRosterValidation, "roster contains no duties")
	}

	result := RosterSimResult{}

	wakeTimeUTC, sAtWake, baselineSleep, baselineDiag := seedBaseline(duties[0], roster, params)
	if baselineDiag != nil {
		result.Diagnostics = append(result.Diagnostics, *baselineDiag)
	}

	phaseShift := 0.0
	cumulativeDebt := 0.0
	var previousDuty *Duty

	for i := range duties {
		if err := ctx.Err(); err != nil {
			return result, Wrap(KindCancelled, "cancelled during roster simulation", err)
		}

		duty := duties[i]
		var generatedBlocks []SleepBlock

		if previousDuty != nil {
			dctx := DispatchContext{
				Duty:         duty,
				PreviousDuty: previousDuty,
				HomeBaseTZ:   roster.HomeBaseTZ,
				HomeBaseCode: roster.HomeBaseCode,
				Params:       params,
			}
			blocks, diags, _, err := GenerateSleepBlocks(dctx)
			if err != nil {
				return RosterSimResult{}, err
			}
			result.Diagnostics = append(result.Diagnostics, diags...)

			blocks, misalignDiags, quErr := withEffectiveHours(blocks, roster, previousDuty, duty, params)
			if quErr != nil {
				return RosterSimResult{}, quErr
			}
			result.Diagnostics = append(result.Diagnostics, misalignDiags...)

			restPeriod := buildRestPeriod(*previousDuty, duty, roster)
			result.RestPeriods = append(result.RestPeriods, restPeriod)

			debt := accumulateSleepDebt(cumulativeDebt, blocks, restPeriod.ActualHours(), params.Homeostatic, params.SleepDebt)
			result.SleepDebtBreakdowns = append(result.SleepDebtBreakdowns, debt)
			cumulativeDebt = debt.AccumulatedH + cumulativeDebt - debt.DecayedH
			if cumulativeDebt < 0 {
				cumulativeDebt = 0
			}

			prevS, err := dutyFinalS(result.DutyTimelines)
			if err != nil {
				return RosterSimResult{}, err
			}
			wakeTimeUTC, sAtWake = backfillAcrossGap(prevS, previousDuty.ReleaseUTC, blocks, params.Homeostatic)

			phaseShift = adaptPhaseShift(phaseShift, *previousDuty, duty, params.JetLag)
			generatedBlocks = blocks
		} else {
			generatedBlocks = baselineSleep
		}

		in := DutySimInput{
			Duty:                duty,
			WakeTimeUTC:         wakeTimeUTC,
			SAtWake:             sAtWake,
			PhaseShift:          phaseShift,
			CumulativeSleepDebt: cumulativeDebt,
			HomeBaseTZ:          roster.HomeBaseTZ,
			Params:              params,
			SleepBlocksBefore:   generatedBlocks,
		}

		simRes, err := SimulateDuty(ctx, in)
		if err != nil {
			if IsKind(err, KindCancelled) {
				return result, err
			}
			return RosterSimResult{}, err
		}
		result.DutyTimelines = append(result.DutyTimelines, simRes.Timeline)

		d := duty
		previousDuty = &d
		wakeTimeUTC = duty.ReleaseUTC
		sAtWake = simRes.SAtRelease
	}

	return result, nil
}

// dutyFinalS returns the S value at release from the most recently simulated
// duty, the seed for backfillAcrossGap.
func dutyFinalS(timelines []DutyTimeline) (float64, error) {
	if len(timelines) == 0 {
		return 0, NewError(KindRosterValidation, "no prior duty timeline to read release S from")
	}
	last := timelines[len(timelines)-1]
	if len(last.Timeline) == 0 {
		return 0, NewError(KindRosterValidation, "prior duty timeline has no samples")
	}
	return last.Timeline[len(last.Timeline)-1].S, nil
}

// seedBaseline implements §4.7 step 1: a baseline sleep block at
// [first_duty.report-8h, first_duty.report-1h] in home base, used to derive
// the first duty's wake time and starting Process-S (no preceding duty
// exists to decay S from, so SAtWake's quality-driven formula is used
// directly rather than ProcessSAsleep's decay-from-prior-S approach) and
// returned alongside so it can be recorded on the first duty's timeline.
func seedBaseline(firstDuty Duty, roster Roster, params Parameters) (time.Time, float64, []SleepBlock, *Diagnostic) {
	start := firstDuty.ReportUTC.Add(-8 * time.Hour)
	end := firstDuty.ReportUTC.Add(-1 * time.Hour)

	block := SleepBlock{
		StartUTC:    start,
		EndUTC:      end,
		LocationTZ:  roster.HomeBaseTZ,
		Environment: EnvironmentHome,
		SleepType:   SleepTypeRecovery,
		Confidence:  0.50,
	}

	effective, err := EffectiveHours(start, end, roster.HomeBaseTZ, EnvironmentHome, QualityContext{
		TimeUntilNextReportH: 1.0,
	}, params)
	if err != nil {
		block.EffectiveHours = params.Homeostatic.BaselineSleepNeed * 0.8
		return end, SAtWake(block.EffectiveHours), []SleepBlock{block}, &Diagnostic{
			DutyID:  firstDuty.DutyID,
			Reason:  ReasonDisruptedCircadian,
			Message: "baseline pre-roster sleep block quality could not be computed; assumed a typical rest",
		}
	}
	block.EffectiveHours = effective
	return end, SAtWake(effective), []SleepBlock{block}, nil
}

// withEffectiveHours fills in each block's EffectiveHours field using §4.3,
// building the QualityContext from the surrounding duties, and flags any
// block whose circadian-phase factor alone (WOCL overlap + late onset, apart
// from logistics-driven penalties) drops to or below
// circadianMisalignmentThreshold — SPEC_FULL.md §4.10's "disrupted
// circadian" diagnostic.
func withEffectiveHours(blocks []SleepBlock, roster Roster, prev *Duty, next Duty, params Parameters) ([]SleepBlock, []Diagnostic, error) {
	out := make([]SleepBlock, len(blocks))
	var diagnostics []Diagnostic
	for i, b := range blocks {
		quCtx := QualityContext{
			TimeSincePreviousReleaseH: b.StartUTC.Sub(prev.ReleaseUTC).Hours(),
			TimeUntilNextReportH:      next.ReportUTC.Sub(b.EndUTC).Hours(),
			IsRecovery:                b.SleepType == SleepTypeRecovery,
		}
		eff, err := EffectiveHours(b.StartUTC, b.EndUTC, b.LocationTZ, b.Environment, quCtx, params)
		if err != nil {
			return nil, nil, err
		}
		b.EffectiveHours = eff
		out[i] = b

		misalignment, err := misalignmentFactor(b.StartUTC, b.EndUTC, b.LocationTZ, params)
		if err != nil {
			return nil, nil, err
		}
		if misalignment <= circadianMisalignmentThreshold {
			diagnostics = append(diagnostics, Diagnostic{
				DutyID:  next.DutyID,
				Reason:  ReasonDisruptedCircadian,
				Message: "sleep block circadian-phase factor below the disruption threshold",
			})
		}
	}
	return out, diagnostics, nil
}

// buildRestPeriod constructs the RestPeriod spanning from one duty's release
// to the next duty's report, classifying away-from-base by comparing the
// previous duty's arrival airport against the roster's home base (§4.8).
func buildRestPeriod(prev, next Duty, roster Roster) RestPeriod {
	arrival := prev.ArrivalAirport()
	return RestPeriod{
		AfterDutyID:  prev.DutyID,
		BeforeDutyID: next.DutyID,
		StartUTC:     prev.ReleaseUTC,
		EndUTC:       next.ReportUTC,
		AwayFromBase: arrival.Code != roster.HomeBaseCode,
		Location:     arrival.Code,
	}
}

// accumulateSleepDebt implements §4.7 step c / SPEC_FULL.md §4.9: debt
// accumulates by the shortfall of this rest period's total raw sleep
// (duration, not quality-adjusted) against the baseline need scaled by the
// number of days the rest period spans, and decays exponentially over the
// elapsed gap at the configured daily rate (half-life ~1.4d at the default
// rate). Returned as a full breakdown so both components are independently
// inspectable, not just their net.
func accumulateSleepDebt(cumulative float64, blocks []SleepBlock, gapHours float64, h Homeostatic, d SleepDebtParams) SleepDebtBreakdown {
	var totalRaw float64
	for _, b := range blocks {
		totalRaw += b.DurationHours()
	}

	days := gapHours / 24.0
	need := h.BaselineSleepNeed * days

	accumulated := need - totalRaw
	if accumulated < 0 {
		accumulated = 0
	}

	decayed := cumulative * (1 - math.Exp(-d.DecayRatePerDay*days))
	if decayed > cumulative {
		decayed = cumulative
	}

	return SleepDebtBreakdown{
		AccumulatedH: accumulated,
		DecayedH:     decayed,
		NetH:         accumulated - decayed,
	}
}

// backfillAcrossGap walks the sleep blocks generated for one rest period in
// chronological order, propagating Process-S through each awake interval
// (ProcessSAwake) and each sleep interval (ProcessSAsleep, scaled by the
// block's effective rather than raw duration so a poor-quality block decays
// pressure less than a good one of the same length). Returns the wake time
// and Process-S value at the end of the last block.
func backfillAcrossGap(sAtRelease float64, releaseUTC time.Time, blocks []SleepBlock, h Homeostatic) (time.Time, float64) {
	if len(blocks) == 0 {
		return releaseUTC, sAtRelease
	}

	sorted := make([]SleepBlock, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartUTC.Before(sorted[j].StartUTC) })

	currentT := releaseUTC
	currentS := sAtRelease

	for _, b := range sorted {
		if b.StartUTC.After(currentT) {
			awakeHours := b.StartUTC.Sub(currentT).Hours()
			currentS = ProcessSAwake(currentS, awakeHours, h)
			currentT = b.StartUTC
		}
		sleepHours := b.EffectiveHours
		if sleepHours <= 0 {
			sleepHours = b.DurationHours()
		}
		currentS = ProcessSAsleep(currentS, sleepHours, h)
		currentT = b.EndUTC
	}

	return currentT, currentS
}

// adaptPhaseShift implements the §4.5 jet-lag adaptation step: the
// circadian phase shifts toward the new home-base-relative offset implied
// by the arrival airport's timezone, at the configured westward/eastward
// rate, bounded by the time actually available in the rest period.
func adaptPhaseShift(current float64, prev, next Duty, j JetLagParams) float64 {
	arrival := prev.ArrivalAirport()
	targetShift := timezoneOffsetDeltaHours(arrival.TZ, next.HomeBaseTZ, next.ReportUTC)

	gapHours := next.ReportUTC.Sub(prev.ReleaseUTC).Hours()
	gapDays := gapHours / 24.0

	delta := targetShift - current
	rate := j.EastwardHoursPerDay
	if delta < 0 {
		rate = j.WestwardHoursPerDay
	}
	maxMove := rate * gapDays

	if delta > maxMove {
		delta = maxMove
	} else if delta < -maxMove {
		delta = -maxMove
	}
	return current + delta
}

// timezoneOffsetDeltaHours returns the difference, in hours, between tz's
// and homeTZ's UTC offset at instant t — the circadian phase shift a pilot
// would need to fully adapt to local time in tz.
func timezoneOffsetDeltaHours(tz, homeTZ string, t time.Time) float64 {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0
	}
	homeLoc, err := time.LoadLocation(homeTZ)
	if err != nil {
		return 0
	}
	_, offset := t.In(loc).Zone()
	_, homeOffset := t.In(homeLoc).Zone()
	return float64(offset-homeOffset) / 3600.0
}
