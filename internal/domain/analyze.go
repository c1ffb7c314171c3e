package domain

import (
	"context"
	"time"
)

// Analyze is the core's single synchronous entry point (§6): given a
// normalized roster, a parameter bundle, an airport-reference lookup, and an
// integration stride, it returns the complete MonthlyAnalysis or a fatal
// structured Error. On cancellation it returns the analysis of the duties
// completed so far together with a Cancelled Error (compliance findings are
// not computed in that case). Cancellation is cooperative via ctx, matching the
// teacher's context-threaded service methods rather than spec.md's separate
// cancel-token parameter.
func Analyze(ctx context.Context, roster Roster, params Parameters, airportLookup AirportLookup, stride time.Duration) (MonthlyAnalysis, error) {
	if err := ValidateRoster(roster); err != nil {
		return MonthlyAnalysis{}, err
	}

	resolved, err := resolveAirports(roster, airportLookup)
	if err != nil {
		return MonthlyAnalysis{}, err
	}
	roster = resolved

	if stride > 0 {
		params.StrideMinutes = stride.Minutes()
	}

	simResult, simErr := SimulateRoster(ctx, roster, params)

	analysis := MonthlyAnalysis{
		Roster:              roster,
		DutyTimelines:       simResult.DutyTimelines,
		RestPeriods:         simResult.RestPeriods,
		SleepDebtBreakdowns: simResult.SleepDebtBreakdowns,
		Diagnostics:         simResult.Diagnostics,
	}

	if simErr != nil {
		if IsKind(simErr, KindCancelled) {
			summarize(&analysis)
			return analysis, simErr
		}
		return MonthlyAnalysis{}, simErr
	}

	complianceParams := DefaultComplianceParams()
	findings, compErr := checkCompliance(roster, simResult.RestPeriods, complianceParams)
	if compErr != nil {
		return MonthlyAnalysis{}, compErr
	}
	analysis.RestComplianceFindings = findings

	summarize(&analysis)
	return analysis, nil
}

// resolveAirports fills in any FlightSegment airport whose timezone is
// unresolved by calling airportLookup, leaving already-resolved airports
// (the expected normal case per §6: "normalized Roster with ... resolved
// airport references") untouched.
func resolveAirports(roster Roster, lookup AirportLookup) (Roster, error) {
	if lookup == nil {
		return roster, nil
	}

	out := roster
	out.Duties = make([]Duty, len(roster.Duties))
	for i, d := range roster.Duties {
		d.Segments = make([]FlightSegment, len(roster.Duties[i].Segments))
		copy(d.Segments, roster.Duties[i].Segments)
		for j, seg := range d.Segments {
			resolvedSeg, err := resolveSegmentAirports(seg, lookup)
			if err != nil {
				return Roster{}, err
			}
			d.Segments[j] = resolvedSeg
		}
		out.Duties[i] = d
	}
	return out, nil
}

func resolveSegmentAirports(seg FlightSegment, lookup AirportLookup) (FlightSegment, error) {
	if seg.Dep.TZ == "" {
		a, err := lookup(seg.Dep.Code)
		if err != nil {
			return seg, Wrap(KindRosterValidation, "unresolvable departure airport: "+seg.Dep.Code, err)
		}
		seg.Dep = a
	}
	if seg.Arr.TZ == "" {
		a, err := lookup(seg.Arr.Code)
		if err != nil {
			return seg, Wrap(KindRosterValidation, "unresolvable arrival airport: "+seg.Arr.Code, err)
		}
		seg.Arr = a
	}
	return seg, nil
}

// checkCompliance runs §4.8's per-rest-period checks plus the rolling
// recurrent-rest rule, attaching each recurrent-rest rolling violation to the
// rest period that actually failed to find qualifying recurrent rest
// (identified by RecurrentRestViolation.RestPeriodIndex, not by its position
// among other violations) rather than inventing a synthetic rest period to
// carry them.
func checkCompliance(roster Roster, restPeriods []RestPeriod, p ComplianceParams) ([]ComplianceFinding, error) {
	dutyHoursByID := make(map[string]float64, len(roster.Duties))
	for _, d := range roster.Duties {
		dutyHoursByID[d.DutyID] = d.DutyHours()
	}

	findings := make([]ComplianceFinding, 0, len(restPeriods))
	for _, rp := range restPeriods {
		finding, err := CheckRestPeriod(rp, dutyHoursByID[rp.AfterDutyID], roster.HomeBaseTZ, p)
		if err != nil {
			return nil, err
		}
		findings = append(findings, finding)
	}

	recurrentViolations, err := CheckRecurrentRest(restPeriods, roster.HomeBaseTZ, p)
	if err != nil {
		return nil, err
	}
	for _, v := range recurrentViolations {
		if v.RestPeriodIndex < len(findings) {
			findings[v.RestPeriodIndex].Violations = append(findings[v.RestPeriodIndex].Violations, v.Message)
			findings[v.RestPeriodIndex].IsCompliant = false
		}
	}

	return findings, nil
}

// summarize computes MonthlyAnalysis's roll-up fields from its per-duty and
// per-rest-period detail, following the teacher's pattern of deriving
// summary statistics from a detail slice rather than accumulating them
// separately (cf. the teacher's monthly rollups over daily entries).
func summarize(a *MonthlyAnalysis) {
	var totalSleepH float64
	nights := 0
	worstPerf := 101.0

	for _, dt := range a.DutyTimelines {
		switch dt.RiskLevel {
		case RiskLow:
			a.LowCount++
		case RiskModerate:
			a.ModerateCount++
		case RiskHigh:
			a.HighCount++
		case RiskCritical:
			a.CriticalCount++
		case RiskExtreme:
			a.ExtremeCount++
		}

		a.TotalPinchEvents += len(dt.PinchEvents)

		basis := dt.AvgPerformance
		if dt.HasLanding {
			basis = dt.LandingPerformance
		}
		if basis < worstPerf {
			worstPerf = basis
			a.WorstDutyID = dt.Duty.DutyID
		}

		for _, b := range dt.SleepBlocksGeneratedBefore {
			totalSleepH += b.EffectiveHours
			nights++
		}

		if dt.CumulativeSleepDebtAtRelease > a.MaxSleepDebtH {
			a.MaxSleepDebtH = dt.CumulativeSleepDebtAtRelease
		}
	}

	if nights > 0 {
		a.AvgSleepPerNightH = totalSleepH / float64(nights)
	}
}
