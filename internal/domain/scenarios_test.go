package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ScenariosSuite exercises the named walkthrough scenarios end to end
// against the real strategy dispatcher, duty simulator, and compliance
// checker, rather than against individual formulas in isolation.
type ScenariosSuite struct {
	suite.Suite
	params Parameters
}

func TestScenariosSuite(t *testing.T) {
	suite.Run(t, new(ScenariosSuite))
}

func (s *ScenariosSuite) SetupTest() {
	s.params = DefaultParameters()
}

func (s *ScenariosSuite) scenarioDuty(id string, reportUTC, releaseUTC time.Time, depCode, arrCode string) Duty {
	seg := FlightSegment{
		FlightNo:    id + "1",
		Dep:         Airport{Code: depCode, TZ: "UTC"},
		Arr:         Airport{Code: arrCode, TZ: "UTC"},
		SchedDepUTC: reportUTC.Add(30 * time.Minute),
		SchedArrUTC: releaseUTC.Add(-30 * time.Minute),
		BlockHours:  releaseUTC.Sub(reportUTC).Hours() - 1,
	}
	d, err := NewDuty(id, reportUTC, reportUTC, releaseUTC, []FlightSegment{seg}, "UTC", "DOH")
	s.Require().NoError(err)
	return d
}

// S1 — normal day, home base: a short daytime duty with no preceding or
// following duty should fall to the Normal strategy, a single 23:00-07:00
// home-local sleep block, and a comfortable (non-critical) performance
// profile throughout.
func (s *ScenariosSuite) TestS1NormalDayHomeBase() {
	d := s.scenarioDuty("S1", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC), "DOH", "DXB")

	strategy, err := SelectStrategy(DispatchContext{Duty: d, HomeBaseTZ: "UTC", HomeBaseCode: "DOH", Params: s.params})
	s.Require().NoError(err)
	s.Equal(StrategyNormal, strategy)

	blocks, diags, strat, err := GenerateSleepBlocks(DispatchContext{Duty: d, HomeBaseTZ: "UTC", HomeBaseCode: "DOH", Params: s.params})
	s.Require().NoError(err)
	s.Equal(StrategyNormal, strat)
	s.Empty(diags)
	s.Require().Len(blocks, 1)
	s.Equal(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), blocks[0].StartUTC)
	s.Equal(time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC), blocks[0].EndUTC)
	s.Equal(EnvironmentHome, blocks[0].Environment)

	result, err := SimulateDuty(context.Background(), DutySimInput{
		Duty: d, WakeTimeUTC: blocks[0].EndUTC, SAtWake: SAtWake(blocks[0].DurationHours()),
		SleepBlocksBefore: blocks, HomeBaseTZ: "UTC", Params: s.params,
	})
	s.Require().NoError(err)
	s.Contains([]RiskLevel{RiskLow, RiskModerate}, result.Timeline.RiskLevel)
	s.Greater(result.Timeline.MinPerformance, 60.0)
	s.Empty(result.Timeline.PinchEvents)
}

// S2 — legal-but-disruptive recovery: a 17h gap after a 06:00 landing and
// before a 23:00 report is long enough to trigger Recovery rather than
// Night-Departure, and the window-driven placement keeps the recovery sleep
// in the afternoon rather than spanning a full night.
func (s *ScenariosSuite) TestS2PathologicalRecoveryWindow() {
	prev := s.scenarioDuty("A", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), "DOH", "DOH")
	next := s.scenarioDuty("B", time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 7, 0, 0, 0, time.UTC), "DOH", "DXB")

	ctx := DispatchContext{Duty: next, PreviousDuty: &prev, HomeBaseTZ: "UTC", HomeBaseCode: "DOH", Params: s.params}

	strategy, err := SelectStrategy(ctx)
	s.Require().NoError(err)
	s.Equal(StrategyRecovery, strategy)

	blocks, _, _, err := GenerateSleepBlocks(ctx)
	s.Require().NoError(err)
	s.Require().Len(blocks, 1)
	s.Equal(EnvironmentHome, blocks[0].Environment)
	s.Equal(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), blocks[0].StartUTC)
	s.Equal(time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC), blocks[0].EndUTC)
	s.True(blocks[0].EndUTC.Before(time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)))
}

// S3 — night departure: a 22:00 report produces the Night-Departure split
// of a morning main sleep plus a pre-duty nap, timed exactly as the
// dispatch table names (07:00-14:00 main, 18:00-20:00 nap), and the duty's
// early-morning landing should register at least one pinch event.
func (s *ScenariosSuite) TestS3NightDeparture() {
	d := s.scenarioDuty("S3", time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC), "DOH", "LHR")

	ctx := DispatchContext{Duty: d, HomeBaseTZ: "UTC", HomeBaseCode: "DOH", Params: s.params}
	strategy, err := SelectStrategy(ctx)
	s.Require().NoError(err)
	s.Equal(StrategyNightDeparture, strategy)

	blocks, _, _, err := GenerateSleepBlocks(ctx)
	s.Require().NoError(err)
	s.Require().Len(blocks, 2)
	s.Equal(SleepTypeMain, blocks[0].SleepType)
	s.Equal(time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC), blocks[0].StartUTC)
	s.Equal(time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), blocks[0].EndUTC)
	s.Equal(SleepTypeNap, blocks[1].SleepType)
	s.Equal(time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), blocks[1].StartUTC)
	s.Equal(time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC), blocks[1].EndUTC)

	result, err := SimulateDuty(context.Background(), DutySimInput{
		Duty: d, WakeTimeUTC: blocks[1].EndUTC, SAtWake: SAtWake(blocks[1].DurationHours()),
		SleepBlocksBefore: blocks, HomeBaseTZ: "UTC", Params: s.params,
	})
	s.Require().NoError(err)
	s.NotEmpty(result.Timeline.PinchEvents)
}

// S4 — early morning: a 04:30 report invokes the Roach regression exactly,
// yielding a 5.475h block at 0.55 confidence ending one hour before report.
func (s *ScenariosSuite) TestS4EarlyMorningRoachRegression() {
	d := s.scenarioDuty("S4", time.Date(2026, 3, 2, 4, 30, 0, 0, time.UTC), time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), "DOH", "DXB")

	ctx := DispatchContext{Duty: d, HomeBaseTZ: "UTC", HomeBaseCode: "DOH", Params: s.params}
	strategy, err := SelectStrategy(ctx)
	s.Require().NoError(err)
	s.Equal(StrategyEarlyMorning, strategy)

	blocks, _, _, err := GenerateSleepBlocks(ctx)
	s.Require().NoError(err)
	s.Require().Len(blocks, 1)
	s.Equal(time.Date(2026, 3, 2, 3, 30, 0, 0, time.UTC), blocks[0].EndUTC)
	s.InDelta(5.475, blocks[0].DurationHours(), 0.001)
	s.InDelta(0.55, blocks[0].Confidence, 0.001)
	s.Equal(EnvironmentHome, blocks[0].Environment)
}

// S5 — WOCL anchor: a 10:00 report with a duty long enough to cross the
// 02:00-06:00 window produces the 4.5h anchor sleep ending 1.5h before
// report, i.e. the same calendar morning rather than the night before.
func (s *ScenariosSuite) TestS5WOCLAnchor() {
	d := s.scenarioDuty("S5", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC), "DOH", "SYD")

	ctx := DispatchContext{Duty: d, HomeBaseTZ: "UTC", HomeBaseCode: "DOH", Params: s.params}
	crosses, err := DutyCrossesWOCL(d, "UTC", s.params.Circadian)
	s.Require().NoError(err)
	s.Require().True(crosses)

	strategy, err := SelectStrategy(ctx)
	s.Require().NoError(err)
	s.Equal(StrategyWOCLAnchor, strategy)

	blocks, _, _, err := GenerateSleepBlocks(ctx)
	s.Require().NoError(err)
	s.Require().Len(blocks, 1)
	s.Equal(time.Date(2026, 3, 2, 4, 0, 0, 0, time.UTC), blocks[0].StartUTC)
	s.Equal(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC), blocks[0].EndUTC)
	s.InDelta(4.5, blocks[0].DurationHours(), 0.001)
}

// S6 — EASA away-from-base violation: an 11h rest after a 12h duty away
// from base falls short of the max(previous_duty_hours, away_floor)
// requirement and is flagged non-compliant with the exact shortfall.
func (s *ScenariosSuite) TestS6AwayFromBaseViolation() {
	rest := RestPeriod{
		AfterDutyID: "A", BeforeDutyID: "B",
		StartUTC: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC),
		AwayFromBase: true, Location: "LHR",
	}

	finding, err := CheckRestPeriod(rest, 12.0, "UTC", DefaultComplianceParams())
	s.Require().NoError(err)
	s.False(finding.IsCompliant)
	s.Equal(RestIllegal, finding.Category)
	s.Require().NotEmpty(finding.Violations)
	s.Contains(finding.Violations[0], "11.00h")
	s.Contains(finding.Violations[0], "12.00h")
}
