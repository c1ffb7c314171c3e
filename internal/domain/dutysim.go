package domain

import (
	"context"
	"math"
	"time"
)

const (
	takeoffWindow  = 5 * time.Minute
	climbWindow    = 15 * time.Minute
	descentWindow  = 20 * time.Minute
	approachWindow = 10 * time.Minute
	landingWindow  = 3 * time.Minute
	taxiWindow     = 10 * time.Minute
)

// DutySimInput carries the state the roster simulator hands to the duty
// simulator for one duty (§4.6).
type DutySimInput struct {
	Duty                Duty
	WakeTimeUTC         time.Time // end of the most recent sleep block
	SAtWake             float64
	PhaseShift          float64
	SleepBlocksBefore   []SleepBlock
	CumulativeSleepDebt float64
	HomeBaseTZ          string
	Params              Parameters
}

// DutySimResult is the duty simulator's output: the full DutyTimeline plus
// the S-state snapshot the roster simulator carries into the next duty.
type DutySimResult struct {
	Timeline     DutyTimeline
	SAtRelease   float64
}

// SimulateDuty implements §4.6: integrates the three-process model at a
// fixed stride from report to release, tags flight phases, records pinch
// events, and computes the duty's summary metrics.
func SimulateDuty(ctx context.Context, in DutySimInput) (DutySimResult, error) {
	stride := time.Duration(in.Params.StrideMinutes * float64(time.Minute))
	if stride <= 0 {
		stride = 5 * time.Minute
	}

	homeLoc, err := time.LoadLocation(in.HomeBaseTZ)
	if err != nil {
		return DutySimResult{}, Wrap(KindRosterValidation, "unresolvable home-base timezone", err)
	}

	cAtWake := ProcessC(localHourOfDay(in.WakeTimeUTC.In(homeLoc)), in.PhaseShift, in.Params.Circadian)

	var (
		timeline       []PerformancePoint
		pinchEvents    []PinchEvent
		seenPinchPhase = map[FlightPhase]bool{}
		minPerf        = math.MaxFloat64
		sumPerf        float64
		count          int
		landingPerf    float64
		hasLanding     bool
		sAtRelease     = in.SAtWake
	)

	d := in.Duty
	for t := d.ReportUTC; !t.After(d.ReleaseUTC); t = t.Add(stride) {
		if err := ctx.Err(); err != nil {
			return DutySimResult{}, Wrap(KindCancelled, "cancelled mid-duty simulation", err)
		}

		hoursAwake := t.Sub(in.WakeTimeUTC).Hours()
		s := ProcessSAwake(in.SAtWake, hoursAwake, in.Params.Homeostatic)

		local := t.In(homeLoc)
		c := ProcessC(localHourOfDay(local), in.PhaseShift, in.Params.Circadian)

		minutesSinceWake := t.Sub(in.WakeTimeUTC).Minutes()
		w := ProcessW(minutesSinceWake, cAtWake, in.Params.Inertia, in.Params.Circadian)

		hoursOnDuty := t.Sub(d.ReportUTC).Hours()
		performance := Performance(StepState{S: s, C: c, W: w, HoursOnDuty: hoursOnDuty}, in.Params.Weights)

		if math.IsNaN(performance) || math.IsInf(performance, 0) {
			return DutySimResult{}, NewError(KindNumericInstability, "non-finite performance value during integration")
		}

		phase := classifyPhase(t, d)
		isWOCL := inWOCL(local, in.Params.Circadian.WOCLStartHour, in.Params.Circadian.WOCLEndHour)
		isCritical := performance < 55

		point := PerformancePoint{
			TUTC: t, TLocal: local,
			S: s, C: c, W: w,
			Performance:          performance,
			CumulativeSleepDebtH: in.CumulativeSleepDebt,
			FlightPhase:          phase,
			IsWOCL:               isWOCL,
			IsCritical:           isCritical,
		}
		timeline = append(timeline, point)

		if performance < minPerf {
			minPerf = performance
		}
		sumPerf += performance
		count++
		if phase == PhaseLanding {
			landingPerf = performance
			hasLanding = true
		}

		if s > 0.7 && c < 0.4 && isPinchPhase(phase) && !seenPinchPhase[phase] {
			pinchEvents = append(pinchEvents, PinchEvent{TUTC: t, Phase: phase, S: s, C: c})
			seenPinchPhase[phase] = true
		}

		sAtRelease = s
	}

	if count == 0 {
		return DutySimResult{}, NewError(KindRosterValidation, "duty produced no integration steps")
	}

	woclH, err := WOCLOverlapHours(d.ReportUTC, d.ReleaseUTC, in.HomeBaseTZ, in.Params.Circadian)
	if err != nil {
		return DutySimResult{}, err
	}

	avgPerf := sumPerf / float64(count)

	timelineCopy := DutyTimeline{
		Duty:                         d,
		Timeline:                     timeline,
		MinPerformance:               minPerf,
		AvgPerformance:               avgPerf,
		LandingPerformance:           landingPerf,
		HasLanding:                   hasLanding,
		PinchEvents:                  pinchEvents,
		WOCLEncroachmentH:            woclH,
		CumulativeSleepDebtAtRelease: in.CumulativeSleepDebt,
		SleepBlocksGeneratedBefore:   in.SleepBlocksBefore,
		RiskLevel:                    in.Params.Risk.Classify(pickRiskBasis(landingPerf, hasLanding, avgPerf)),
	}

	return DutySimResult{Timeline: timelineCopy, SAtRelease: sAtRelease}, nil
}

// pickRiskBasis uses landing performance when the duty had a landing phase
// (the safety-relevant figure), falling back to average performance for
// duties with no landing (e.g. truncated or simulation-only segments).
func pickRiskBasis(landingPerf float64, hasLanding bool, avgPerf float64) float64 {
	if hasLanding {
		return landingPerf
	}
	return avgPerf
}

func isPinchPhase(p FlightPhase) bool {
	return p == PhaseTakeoff || p == PhaseApproach || p == PhaseLanding
}

// classifyPhase implements §4.6 step 4's phase-matching rules against the
// duty's segments. Preflight covers everything before the first segment's
// taxi-out window; TaxiIn covers the window after the last segment's
// arrival. Between segments (multi-sector duties), time is treated as
// Cruise of the nearest enclosing segment's schedule — ground time between
// sectors is not separately modeled since spec.md names no phase for it.
func classifyPhase(t time.Time, d Duty) FlightPhase {
	segs := d.Segments
	first := segs[0]
	last := segs[len(segs)-1]

	if t.Before(first.SchedDepUTC.Add(-taxiWindow)) {
		return PhasePreflight
	}
	if t.After(last.SchedArrUTC.Add(taxiWindow)) {
		return PhaseTaxiIn
	}

	for _, seg := range segs {
		if t.Before(seg.SchedDepUTC.Add(-taxiWindow)) || t.After(seg.SchedArrUTC.Add(taxiWindow)) {
			continue
		}
		return classifySegmentPhase(t, seg)
	}

	return PhaseCruise
}

func classifySegmentPhase(t time.Time, seg FlightSegment) FlightPhase {
	dep := seg.SchedDepUTC
	arr := seg.SchedArrUTC

	switch {
	case t.Before(dep):
		return PhaseTaxiOut
	case t.Before(dep.Add(takeoffWindow)):
		return PhaseTakeoff
	case t.Before(dep.Add(takeoffWindow + climbWindow)):
		return PhaseClimb
	case t.After(arr):
		return PhaseTaxiIn
	case !t.Before(arr.Add(-landingWindow)):
		return PhaseLanding
	case !t.Before(arr.Add(-approachWindow)):
		return PhaseApproach
	case !t.Before(arr.Add(-descentWindow - approachWindow)):
		return PhaseDescent
	default:
		return PhaseCruise
	}
}
