// Package domain implements the fatigue-simulation core: sleep inference,
// three-process alertness propagation, and derived risk/compliance metrics
// for a monthly pilot roster. The package is pure and synchronous — it
// performs no I/O and holds no package-level mutable state.
package domain

import (
	"fmt"
	"time"
)

// Environment identifies where a sleep block took place.
type Environment string

const (
	EnvironmentHome         Environment = "home"
	EnvironmentHotel        Environment = "hotel"
	EnvironmentAirportHotel Environment = "airport_hotel"
	EnvironmentCrewRest     Environment = "crew_rest"
	EnvironmentCrewHouse    Environment = "crew_house"
)

// SleepType classifies the purpose of a sleep block.
type SleepType string

const (
	SleepTypeMain      SleepType = "main"
	SleepTypeNap       SleepType = "nap"
	SleepTypeAnchor    SleepType = "anchor"
	SleepTypeInflight  SleepType = "inflight"
	SleepTypeRecovery  SleepType = "recovery"
)

// FlightPhase tags a PerformancePoint with the operational phase it falls
// within, per spec.md §4.6 step 4.
type FlightPhase string

const (
	PhasePreflight FlightPhase = "preflight"
	PhaseTaxiOut   FlightPhase = "taxi_out"
	PhaseTakeoff   FlightPhase = "takeoff"
	PhaseClimb     FlightPhase = "climb"
	PhaseCruise    FlightPhase = "cruise"
	PhaseDescent   FlightPhase = "descent"
	PhaseApproach  FlightPhase = "approach"
	PhaseLanding   FlightPhase = "landing"
	PhaseTaxiIn    FlightPhase = "taxi_in"
)

// Strategy identifies which of the five sleep-generation strategies (§4.4)
// produced a given set of sleep blocks.
type Strategy string

const (
	StrategyNormal         Strategy = "normal"
	StrategyNightDeparture Strategy = "night_departure"
	StrategyEarlyMorning   Strategy = "early_morning"
	StrategyWOCLAnchor     Strategy = "wocl_anchor"
	StrategyRecovery       Strategy = "recovery"
)

// RiskLevel buckets a performance value against the thresholds in §4.1.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
	RiskExtreme  RiskLevel = "extreme"
)

// RestCategory classifies a rest period for EASA reporting (§4.8).
type RestCategory string

const (
	RestIllegal   RestCategory = "illegal"
	RestMinimum   RestCategory = "minimum"
	RestAdequate  RestCategory = "adequate"
	RestRecurrent RestCategory = "recurrent"
	RestExtended  RestCategory = "extended"
)

// Airport is immutable reference data resolved via the caller-supplied
// lookup function (spec.md §6); the core never loads it itself.
type Airport struct {
	Code string  `json:"code"`
	TZ   string  `json:"timezone"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// FlightSegment is one scheduled flight leg within a Duty. Immutable once
// constructed.
type FlightSegment struct {
	FlightNo    string    `json:"flight_no"`
	Dep         Airport   `json:"dep"`
	Arr         Airport   `json:"arr"`
	SchedDepUTC time.Time `json:"sched_dep_utc"`
	SchedArrUTC time.Time `json:"sched_arr_utc"`
	BlockHours  float64   `json:"block_hours"`
}

// Duty is a single report-to-release work period, possibly spanning several
// flight segments. Construct via NewDuty, which enforces spec.md §3's
// invariants.
type Duty struct {
	DutyID      string          `json:"duty_id"`
	Date        time.Time       `json:"date"`
	ReportUTC   time.Time       `json:"report_utc"`
	ReleaseUTC  time.Time       `json:"release_utc"`
	Segments     []FlightSegment `json:"segments"`
	HomeBaseTZ   string          `json:"home_base_tz"`
	HomeBaseCode string          `json:"home_base_code"`
	FDPHours     float64         `json:"fdp_hours"`
}

// DutyHours returns the wall-clock span from report to release, used by the
// EASA minimum-rest rule (§4.8) as `previous_duty.duty_hours`.
func (d Duty) DutyHours() float64 {
	return d.ReleaseUTC.Sub(d.ReportUTC).Hours()
}

// ArrivalAirport returns the last segment's arrival airport, i.e. the
// pilot's physical location at release.
func (d Duty) ArrivalAirport() Airport {
	return d.Segments[len(d.Segments)-1].Arr
}

// NewDuty validates and constructs a Duty, enforcing spec.md §3:
//   - report_utc < release_utc
//   - segments are chronologically non-overlapping
//   - report_utc <= first departure (shifted back a day if the source data
//     violates this, per spec.md §3)
//   - release_utc >= last arrival
//
// fdp_hours is computed as (last arrival + 30min) - report_utc.
func NewDuty(dutyID string, date time.Time, reportUTC, releaseUTC time.Time, segments []FlightSegment, homeBaseTZ, homeBaseCode string) (Duty, error) {
	if len(segments) == 0 {
		return Duty{}, NewError(KindRosterValidation, fmt.Sprintf("duty %s: must contain at least one flight segment", dutyID))
	}
	if !reportUTC.Before(releaseUTC) {
		return Duty{}, NewError(KindRosterValidation, fmt.Sprintf("duty %s: report_utc (%s) must precede release_utc (%s)", dutyID, reportUTC, releaseUTC))
	}
	for i := 0; i < len(segments)-1; i++ {
		if segments[i].SchedArrUTC.After(segments[i+1].SchedDepUTC) {
			return Duty{}, NewError(KindRosterValidation, fmt.Sprintf("duty %s: segment %d arrival overlaps segment %d departure", dutyID, i, i+1))
		}
	}
	for i, seg := range segments {
		if !seg.SchedArrUTC.After(seg.SchedDepUTC) {
			return Duty{}, NewError(KindRosterValidation, fmt.Sprintf("duty %s: segment %d arrival must be after departure", dutyID, i))
		}
	}

	if reportUTC.After(segments[0].SchedDepUTC) {
		reportUTC = reportUTC.AddDate(0, 0, -1)
	}

	last := segments[len(segments)-1]
	if releaseUTC.Before(last.SchedArrUTC) {
		return Duty{}, NewError(KindRosterValidation, fmt.Sprintf("duty %s: release_utc (%s) precedes last arrival (%s)", dutyID, releaseUTC, last.SchedArrUTC))
	}

	fdpHours := last.SchedArrUTC.Add(30 * time.Minute).Sub(reportUTC).Hours()

	return Duty{
		DutyID:       dutyID,
		Date:         date,
		ReportUTC:    reportUTC,
		ReleaseUTC:   releaseUTC,
		Segments:     segments,
		HomeBaseTZ:   homeBaseTZ,
		HomeBaseCode: homeBaseCode,
		FDPHours:     fdpHours,
	}, nil
}

// RosterMonth identifies the calendar month a Roster covers.
type RosterMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Roster is the normalized monthly input to Analyze.
type Roster struct {
	RosterID     string      `json:"roster_id"`
	PilotID      string      `json:"pilot_id"`
	Month        RosterMonth `json:"month"`
	Duties       []Duty      `json:"duties"`
	HomeBaseTZ   string      `json:"home_base_tz"`
	HomeBaseCode string      `json:"home_base_code"`
}

// SleepBlock is an inferred (never scheduled) sleep interval, produced only
// by the sleep-strategy dispatcher (§4.4). Immutable once emitted.
type SleepBlock struct {
	StartUTC       time.Time   `json:"start_utc"`
	EndUTC         time.Time   `json:"end_utc"`
	LocationTZ     string      `json:"location_tz"`
	Environment    Environment `json:"environment"`
	SleepType      SleepType   `json:"sleep_type"`
	Confidence     float64     `json:"confidence"`
	EffectiveHours float64     `json:"effective_hours"`
}

// DurationHours is the raw (non-effective) span of the block.
func (b SleepBlock) DurationHours() float64 {
	return b.EndUTC.Sub(b.StartUTC).Hours()
}

// PerformancePoint is one minute- (or stride-) resolution sample of the
// integrated three-process model, per spec.md §3.
type PerformancePoint struct {
	TUTC                  time.Time   `json:"t_utc"`
	TLocal                time.Time   `json:"t_local"`
	S                     float64     `json:"s"`
	C                     float64     `json:"c"`
	W                     float64     `json:"w"`
	Performance           float64     `json:"performance"`
	CumulativeSleepDebtH  float64     `json:"cumulative_sleep_debt_h"`
	FlightPhase           FlightPhase `json:"flight_phase"`
	IsWOCL                bool        `json:"is_wocl"`
	IsCritical            bool        `json:"is_critical"`
}

// PinchEvent records a coincident high-pressure/low-alertness sample during
// a safety-critical flight phase (§4.6 step 5).
type PinchEvent struct {
	TUTC  time.Time   `json:"t_utc"`
	Phase FlightPhase `json:"phase"`
	S     float64     `json:"s"`
	C     float64     `json:"c"`
}

// SleepDebtBreakdown decomposes the net sleep-debt delta accumulated across
// one inter-duty interval into its accumulation and decay components
// (SPEC_FULL.md §4.9); RosterSimulator's net cumulative_sleep_debt is
// unaffected by this — it is an additional diagnostic view.
type SleepDebtBreakdown struct {
	AccumulatedH float64 `json:"accumulated_h"`
	DecayedH     float64 `json:"decayed_h"`
	NetH         float64 `json:"net_h"`
}

// DutyTimeline is the full per-step simulation output for one duty plus its
// derived summary metrics (§4.6).
type DutyTimeline struct {
	Duty                          Duty               `json:"duty"`
	Timeline                      []PerformancePoint `json:"timeline"`
	MinPerformance                float64            `json:"min_performance"`
	AvgPerformance                float64            `json:"avg_performance"`
	LandingPerformance            float64            `json:"landing_performance"`
	HasLanding                    bool               `json:"has_landing"`
	PinchEvents                   []PinchEvent       `json:"pinch_events"`
	WOCLEncroachmentH             float64            `json:"wocl_encroachment_h"`
	CumulativeSleepDebtAtRelease  float64            `json:"cumulative_sleep_debt_at_release"`
	SleepBlocksGeneratedBefore    []SleepBlock       `json:"sleep_blocks_generated_before"`
	RiskLevel                    RiskLevel          `json:"risk_level"`
}

// RestPeriod is the interval between one duty's release and the next duty's
// report, the unit of EASA compliance checking (§4.8).
type RestPeriod struct {
	AfterDutyID  string    `json:"after_duty_id"`
	BeforeDutyID string    `json:"before_duty_id"`
	StartUTC     time.Time `json:"start_utc"`
	EndUTC       time.Time `json:"end_utc"`
	AwayFromBase bool      `json:"away_from_base"`
	Location     string    `json:"location"`
}

// ActualHours is the wall-clock span of the rest period.
func (r RestPeriod) ActualHours() float64 {
	return r.EndUTC.Sub(r.StartUTC).Hours()
}

// ComplianceFinding is the per-rest-period EASA ORO.FTL.235 result (§4.8).
type ComplianceFinding struct {
	RestPeriod         RestPeriod   `json:"rest_period"`
	Category           RestCategory `json:"category"`
	IsCompliant        bool         `json:"is_compliant"`
	Violations         []string     `json:"violations"`
	LocalNightsCovered int          `json:"local_nights_covered"`
}

// MonthlyAnalysis is the complete output of Analyze.
type MonthlyAnalysis struct {
	Roster                   Roster              `json:"roster"`
	DutyTimelines            []DutyTimeline      `json:"duty_timelines"`
	RestPeriods              []RestPeriod        `json:"rest_periods"`
	RestComplianceFindings   []ComplianceFinding `json:"rest_compliance_findings"`
	AvgSleepPerNightH        float64             `json:"avg_sleep_per_night_h"`
	MaxSleepDebtH            float64             `json:"max_sleep_debt_h"`
	SleepDebtBreakdowns      []SleepDebtBreakdown `json:"sleep_debt_breakdowns"`
	LowCount                 int                 `json:"low_count"`
	ModerateCount            int                 `json:"moderate_count"`
	HighCount                int                 `json:"high_count"`
	CriticalCount            int                 `json:"critical_count"`
	ExtremeCount             int                 `json:"extreme_count"`
	WorstDutyID              string              `json:"worst_duty_id"`
	TotalPinchEvents         int                 `json:"total_pinch_events"`
	Diagnostics              []Diagnostic        `json:"diagnostics"`
}

// AirportLookup resolves an IATA code to reference data. Supplied by the
// caller; the core never loads airport data itself (spec.md §6).
type AirportLookup func(code string) (Airport, error)
