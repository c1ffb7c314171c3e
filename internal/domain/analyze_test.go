package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type AnalyzeSuite struct {
	suite.Suite
	params Parameters
}

func TestAnalyzeSuite(t *testing.T) {
	suite.Run(t, new(AnalyzeSuite))
}

func (s *AnalyzeSuite) SetupTest() {
	s.params = DefaultParameters()
}

func (s *AnalyzeSuite) roster(withTZ bool) Roster {
	report1 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	dep1 := report1.Add(30 * time.Minute)
	arr1 := dep1.Add(4 * time.Hour)
	release1 := arr1.Add(30 * time.Minute)

	depAirport := Airport{Code: "AWY"}
	if withTZ {
		depAirport.TZ = "UTC"
	}

	d1, err := NewDuty("OUT1", report1, report1, release1, []FlightSegment{{
		FlightNo: "TT1", Dep: Airport{Code: "HOM", TZ: "UTC"}, Arr: depAirport,
		SchedDepUTC: dep1, SchedArrUTC: arr1, BlockHours: 4,
	}}, "UTC", "HOM")
	s.Require().NoError(err)

	report2 := release1.Add(20 * time.Hour)
	dep2 := report2.Add(30 * time.Minute)
	arr2 := dep2.Add(4 * time.Hour)
	release2 := arr2.Add(30 * time.Minute)
	d2, err := NewDuty("RET1", report2, report2, release2, []FlightSegment{{
		FlightNo: "TT2", Dep: depAirport, Arr: Airport{Code: "HOM", TZ: "UTC"},
		SchedDepUTC: dep2, SchedArrUTC: arr2, BlockHours: 4,
	}}, "UTC", "HOM")
	s.Require().NoError(err)

	return Roster{
		RosterID: "R1", PilotID: "P1",
		Month:        RosterMonth{Year: 2026, Month: 3},
		Duties:       []Duty{d1, d2},
		HomeBaseTZ:   "UTC",
		HomeBaseCode: "HOM",
	}
}

func (s *AnalyzeSuite) TestAnalyzeProducesCompleteMonthlyAnalysis() {
	roster := s.roster(true)
	lookup := func(code string) (Airport, error) {
		return Airport{Code: code, TZ: "UTC"}, nil
	}

	analysis, err := Analyze(context.Background(), roster, s.params, lookup, 0)
	s.Require().NoError(err)
	s.Require().Len(analysis.DutyTimelines, 2)
	s.Require().Len(analysis.RestPeriods, 1)
	s.Require().Len(analysis.RestComplianceFindings, 1)
	s.Equal(analysis.LowCount+analysis.ModerateCount+analysis.HighCount+analysis.CriticalCount+analysis.ExtremeCount, 2)
	s.NotEmpty(analysis.WorstDutyID)
}

func (s *AnalyzeSuite) TestAnalyzeResolvesUnresolvedAirportsViaLookup() {
	roster := s.roster(false) // AWY has no TZ set; Analyze must call the lookup
	called := false
	lookup := func(code string) (Airport, error) {
		called = true
		return Airport{Code: code, TZ: "UTC"}, nil
	}

	_, err := Analyze(context.Background(), roster, s.params, lookup, 0)
	s.Require().NoError(err)
	s.True(called)
}

func (s *AnalyzeSuite) TestAnalyzePropagatesUnresolvableAirportError() {
	roster := s.roster(false)
	lookup := func(code string) (Airport, error) {
		return Airport{}, NewError(KindRosterValidation, "unknown airport: "+code)
	}

	_, err := Analyze(context.Background(), roster, s.params, lookup, 0)
	s.Error(err)
}

func (s *AnalyzeSuite) TestAnalyzeRejectsInvalidRoster() {
	roster := Roster{RosterID: "Empty", HomeBaseTZ: "UTC", HomeBaseCode: "HOM"}
	lookup := func(code string) (Airport, error) { return Airport{Code: code, TZ: "UTC"}, nil }

	_, err := Analyze(context.Background(), roster, s.params, lookup, 0)
	s.Error(err)
	s.True(IsKind(err, KindRosterValidation))
}

func (s *AnalyzeSuite) TestAnalyzeStrideOverridesPreset() {
	roster := s.roster(true)
	lookup := func(code string) (Airport, error) { return Airport{Code: code, TZ: "UTC"}, nil }

	analysis, err := Analyze(context.Background(), roster, s.params, lookup, 10*time.Minute)
	s.Require().NoError(err)
	s.Require().NotEmpty(analysis.DutyTimelines[0].Timeline)

	gotStrideMinutes := analysis.DutyTimelines[0].Timeline[1].TUTC.Sub(analysis.DutyTimelines[0].Timeline[0].TUTC).Minutes()
	s.InDelta(10.0, gotStrideMinutes, 0.01)
}

func (s *AnalyzeSuite) TestAnalyzeHandlesCancellationByReturningPartialResult() {
	roster := s.roster(true)
	lookup := func(code string) (Airport, error) { return Airport{Code: code, TZ: "UTC"}, nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analysis, err := Analyze(ctx, roster, s.params, lookup, 0)
	s.Error(err)
	s.True(IsKind(err, KindCancelled))
	s.Equal(roster.RosterID, analysis.Roster.RosterID)
}
