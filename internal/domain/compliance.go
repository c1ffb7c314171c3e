package domain

import (
	"fmt"
	"time"
)

// ComplianceParams holds the EASA ORO.FTL.235 thresholds (§4.8), broken out
// as a parameter struct rather than hard-coded constants so a caller running
// under a different authority's rest rules can override them without
// touching the checker itself.
type ComplianceParams struct {
	MinimumRestHomeHours  float64 `json:"minimum_rest_home_hours" mapstructure:"minimum_rest_home_hours"`
	MinimumRestAwayHours  float64 `json:"minimum_rest_away_hours" mapstructure:"minimum_rest_away_hours"`
	LocalNightStartHour   float64 `json:"local_night_start_hour" mapstructure:"local_night_start_hour"`
	LocalNightEndHour     float64 `json:"local_night_end_hour" mapstructure:"local_night_end_hour"`
	SleepOpportunityHours float64 `json:"sleep_opportunity_hours" mapstructure:"sleep_opportunity_hours"`
	SleepOpportunityOverheadHours float64 `json:"sleep_opportunity_overhead_hours" mapstructure:"sleep_opportunity_overhead_hours"`
	RecurrentRestHours    float64 `json:"recurrent_rest_hours" mapstructure:"recurrent_rest_hours"`
	RecurrentWindowHours  float64 `json:"recurrent_window_hours" mapstructure:"recurrent_window_hours"`
	RecurrentNightStartHour float64 `json:"recurrent_night_start_hour" mapstructure:"recurrent_night_start_hour"`
	RecurrentNightEndHour   float64 `json:"recurrent_night_end_hour" mapstructure:"recurrent_night_end_hour"`
}

// DefaultComplianceParams returns the ORO.FTL.235 values named in §4.8.
func DefaultComplianceParams() ComplianceParams {
	return ComplianceParams{
		MinimumRestHomeHours:          12.0,
		MinimumRestAwayHours:          10.0,
		LocalNightStartHour:           22.0,
		LocalNightEndHour:             8.0,
		SleepOpportunityHours:         8.0,
		SleepOpportunityOverheadHours: 3.0,
		RecurrentRestHours:            36.0,
		RecurrentWindowHours:          168.0,
		RecurrentNightStartHour:       0.0,
		RecurrentNightEndHour:         5.0,
	}
}

// CheckRestPeriod implements §4.8's per-rest-period checks. previousDutyHours
// is duty N's DutyHours() (the duty that starts this rest period).
func CheckRestPeriod(rest RestPeriod, previousDutyHours float64, homeTZ string, p ComplianceParams) (ComplianceFinding, error) {
	var violations []string
	actual := rest.ActualHours()

	required := p.MinimumRestAwayHours
	if !rest.AwayFromBase {
		required = p.MinimumRestHomeHours
	}
	if previousDutyHours > required {
		required = previousDutyHours
	}
	if actual < required {
		violations = append(violations, fmt.Sprintf("rest period %.2fh is below the required %.2fh minimum", actual, required))
	}

	nightsCovered, err := countNightWindows(rest, homeTZ, p.LocalNightStartHour, p.LocalNightEndHour)
	if err != nil {
		return ComplianceFinding{}, err
	}
	if !rest.AwayFromBase && nightsCovered < 1 {
		violations = append(violations, "rest period does not fully contain a 22:00-08:00 home-base local night")
	}

	if rest.AwayFromBase {
		available := actual - p.SleepOpportunityOverheadHours
		if available < p.SleepOpportunityHours {
			violations = append(violations, fmt.Sprintf("away-from-base sleep opportunity %.2fh (after %.1fh overhead) is below the %.1fh minimum", available, p.SleepOpportunityOverheadHours, p.SleepOpportunityHours))
		}
	}

	category := categorizeRest(rest, actual, required, p)

	return ComplianceFinding{
		RestPeriod:         rest,
		Category:           category,
		IsCompliant:        len(violations) == 0,
		Violations:         violations,
		LocalNightsCovered: nightsCovered,
	}, nil
}

// countNightWindows counts how many distinct [startHour, endHour) local-time
// windows fall entirely within the rest period, in tz.
func countNightWindows(rest RestPeriod, tz string, startHour, endHour float64) (int, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, Wrap(KindRosterValidation, "unresolvable timezone: "+tz, err)
	}

	start := rest.StartUTC.In(loc)
	count := 0
	for day := start.AddDate(0, 0, -1); !day.After(rest.EndUTC.In(loc)); day = day.AddDate(0, 0, 1) {
		winStart := atLocalHour(day, startHour, loc)
		winEnd := winStart
		if endHour <= startHour {
			winEnd = atLocalHour(day.AddDate(0, 0, 1), endHour, loc)
		} else {
			winEnd = atLocalHour(day, endHour, loc)
		}
		if !winStart.Before(rest.StartUTC) && !winEnd.After(rest.EndUTC) {
			count++
		}
	}
	return count, nil
}

// atLocalHour builds the UTC instant corresponding to hour:00 local time on
// day's calendar date in loc.
func atLocalHour(day time.Time, hour float64, loc *time.Location) time.Time {
	h := int(hour)
	m := int((hour - float64(h)) * 60)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
}

// categorizeRest buckets a rest period for reporting (§4.8's output
// enumeration): Illegal when short of the required minimum, Recurrent when
// it lasts at least RecurrentRestHours (36h; the two-local-night condition is
// checked only by CheckRecurrentRest, not here), Extended for
// anything comfortably beyond the requirement, Adequate otherwise, Minimum
// at the boundary.
func categorizeRest(rest RestPeriod, actual, required float64, p ComplianceParams) RestCategory {
	switch {
	case actual < required:
		return RestIllegal
	case actual >= p.RecurrentRestHours:
		return RestRecurrent
	case actual >= required*1.5:
		return RestExtended
	case actual <= required+0.5:
		return RestMinimum
	default:
		return RestAdequate
	}
}

// RecurrentRestViolation pairs a rolling-window violation message with the
// index into the restPeriods slice CheckRecurrentRest was given, identifying
// which rest period failed to find a qualifying recurrent rest in its
// window. CheckRecurrentRest only emits one entry per offending period, so
// callers must attach by RestPeriodIndex rather than by position in the
// returned slice.
type RecurrentRestViolation struct {
	RestPeriodIndex int
	Message         string
}

// CheckRecurrentRest implements §4.8's rolling-window rule: within any
// RecurrentWindowHours (168h) span, the pilot must receive at least one rest
// period of RecurrentRestHours (36h) containing two 00:00-05:00 home-local
// periods. restPeriods must be sorted chronologically by StartUTC.
func CheckRecurrentRest(restPeriods []RestPeriod, homeTZ string, p ComplianceParams) ([]RecurrentRestViolation, error) {
	var violations []RecurrentRestViolation

	for i, r := range restPeriods {
		windowStart := r.StartUTC.Add(-time.Duration(p.RecurrentWindowHours * float64(time.Hour)))
		satisfied := false
		for j := i; j >= 0; j-- {
			cand := restPeriods[j]
			if cand.EndUTC.Before(windowStart) {
				break
			}
			if cand.ActualHours() < p.RecurrentRestHours {
				continue
			}
			nights, err := countNightWindows(cand, homeTZ, p.RecurrentNightStartHour, p.RecurrentNightEndHour)
			if err != nil {
				return nil, err
			}
			if nights >= 2 {
				satisfied = true
				break
			}
		}
		if !satisfied {
			violations = append(violations, RecurrentRestViolation{
				RestPeriodIndex: i,
				Message: fmt.Sprintf("no recurrent rest (>=%.0fh, two 00:00-05:00 periods) found in the %.0fh window ending %s",
					p.RecurrentRestHours, p.RecurrentWindowHours, r.StartUTC.Format("2006-01-02T15:04Z")),
			})
		}
	}
	return violations, nil
}
