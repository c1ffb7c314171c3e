package domain

import (
	"fmt"
	"sort"
)

// ValidateRoster checks roster-level invariants that a single NewDuty call
// cannot see: duties must be chronologically non-overlapping and the roster
// must name a home base (a non-empty timezone and code; the timezone is not
// resolved here), with at least one duty and no duplicate duty IDs. Per-duty invariants (segment ordering,
// report/release ordering) are enforced by NewDuty at construction time.
func ValidateRoster(r Roster) error {
	if r.HomeBaseTZ == "" {
		return NewError(KindRosterValidation, fmt.Sprintf("roster %s: home_base_tz is required", r.RosterID))
	}
	if r.HomeBaseCode == "" {
		return NewError(KindRosterValidation, fmt.Sprintf("roster %s: home_base_code is required", r.RosterID))
	}
	if len(r.Duties) == 0 {
		return NewError(KindRosterValidation, fmt.Sprintf("roster %s: must contain at least one duty", r.RosterID))
	}

	duties := make([]Duty, len(r.Duties))
	copy(duties, r.Duties)
	sort.Slice(duties, func(i, j int) bool { return duties[i].ReportUTC.Before(duties[j].ReportUTC) })

	for i := 0; i < len(duties)-1; i++ {
		cur, next := duties[i], duties[i+1]
		if cur.ReleaseUTC.After(next.ReportUTC) {
			return NewError(KindRosterValidation, fmt.Sprintf(
				"roster %s: duty %s (release %s) overlaps duty %s (report %s)",
				r.RosterID, cur.DutyID, cur.ReleaseUTC, next.DutyID, next.ReportUTC))
		}
	}

	seen := make(map[string]bool, len(duties))
	for _, d := range duties {
		if seen[d.DutyID] {
			return NewError(KindRosterValidation, fmt.Sprintf("roster %s: duplicate duty_id %s", r.RosterID, d.DutyID))
		}
		seen[d.DutyID] = true
	}

	return nil
}
