package rosterio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type RosterIOSuite struct {
	suite.Suite
}

func TestRosterIOSuite(t *testing.T) {
	suite.Run(t, new(RosterIOSuite))
}

const header = "roster_id,pilot_id,home_base_tz,home_base_code,year,month,duty_id,date,report_utc,release_utc,flight_no,dep_code,dep_tz,dep_lat,dep_lon,arr_code,arr_tz,arr_lat,arr_lon,sched_dep_utc,sched_arr_utc,block_hours\n"

func (s *RosterIOSuite) TestLoadReaderGroupsSegmentsIntoDuties() {
	csv := header +
		"R1,P1,UTC,HOM,2026,3,D1,2026-03-02,2026-03-02T09:00:00Z,2026-03-02T13:30:00Z,TT1,HOM,UTC,0,0,AWY,UTC,0,0,2026-03-02T09:30:00Z,2026-03-02T13:00:00Z,3.5\n" +
		"R1,P1,UTC,HOM,2026,3,D2,2026-03-03,2026-03-03T09:00:00Z,2026-03-03T13:30:00Z,TT2,AWY,UTC,0,0,HOM,UTC,0,0,2026-03-03T09:30:00Z,2026-03-03T13:00:00Z,3.5\n"

	roster, err := LoadReader(strings.NewReader(csv))
	s.Require().NoError(err)
	s.Equal("R1", roster.RosterID)
	s.Equal("UTC", roster.HomeBaseTZ)
	s.Require().Len(roster.Duties, 2)
	s.Equal("D1", roster.Duties[0].DutyID)
	s.Equal("D2", roster.Duties[1].DutyID)
}

func (s *RosterIOSuite) TestLoadReaderGroupsMultiSegmentDuty() {
	csv := header +
		"R1,P1,UTC,HOM,2026,3,D1,2026-03-02,2026-03-02T09:00:00Z,2026-03-02T20:00:00Z,TT1,HOM,UTC,0,0,MID,UTC,0,0,2026-03-02T09:30:00Z,2026-03-02T13:00:00Z,3.5\n" +
		"R1,P1,UTC,HOM,2026,3,D1,2026-03-02,2026-03-02T09:00:00Z,2026-03-02T20:00:00Z,TT2,MID,UTC,0,0,AWY,UTC,0,0,2026-03-02T14:00:00Z,2026-03-02T19:00:00Z,5.0\n"

	roster, err := LoadReader(strings.NewReader(csv))
	s.Require().NoError(err)
	s.Require().Len(roster.Duties, 1)
	s.Require().Len(roster.Duties[0].Segments, 2)
	s.Equal("TT1", roster.Duties[0].Segments[0].FlightNo)
	s.Equal("TT2", roster.Duties[0].Segments[1].FlightNo)
}

func (s *RosterIOSuite) TestLoadReaderRejectsMissingColumn() {
	_, err := LoadReader(strings.NewReader("roster_id,pilot_id\nR1,P1\n"))
	s.Error(err)
}

func (s *RosterIOSuite) TestLoadReaderRejectsInvalidTimestamp() {
	csv := header +
		"R1,P1,UTC,HOM,2026,3,D1,2026-03-02,not-a-time,2026-03-02T13:30:00Z,TT1,HOM,UTC,0,0,AWY,UTC,0,0,2026-03-02T09:30:00Z,2026-03-02T13:00:00Z,3.5\n"
	_, err := LoadReader(strings.NewReader(csv))
	s.Error(err)
}

func (s *RosterIOSuite) TestLoadReaderSortsDutiesChronologically() {
	csv := header +
		"R1,P1,UTC,HOM,2026,3,D2,2026-03-03,2026-03-03T09:00:00Z,2026-03-03T13:30:00Z,TT2,AWY,UTC,0,0,HOM,UTC,0,0,2026-03-03T09:30:00Z,2026-03-03T13:00:00Z,3.5\n" +
		"R1,P1,UTC,HOM,2026,3,D1,2026-03-02,2026-03-02T09:00:00Z,2026-03-02T13:30:00Z,TT1,HOM,UTC,0,0,AWY,UTC,0,0,2026-03-02T09:30:00Z,2026-03-02T13:00:00Z,3.5\n"

	roster, err := LoadReader(strings.NewReader(csv))
	s.Require().NoError(err)
	s.Require().Len(roster.Duties, 2)
	s.Equal("D1", roster.Duties[0].DutyID)
	s.Equal("D2", roster.Duties[1].DutyID)
}
