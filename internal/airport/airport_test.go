package airport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type AirportSuite struct {
	suite.Suite
}

func TestAirportSuite(t *testing.T) {
	suite.Run(t, new(AirportSuite))
}

const sampleCSV = `code,timezone,lat,lon
hom,America/New_York,40.6413,-73.7781
awy,Europe/London,51.4700,-0.4543
`

func (s *AirportSuite) TestLoadReaderParsesRowsCaseInsensitively() {
	table, err := LoadReader(strings.NewReader(sampleCSV))
	s.Require().NoError(err)
	s.Equal(2, table.Len())

	a, err := table.Resolve("hom")
	s.Require().NoError(err)
	s.Equal("HOM", a.Code)
	s.Equal("America/New_York", a.TZ)
	s.InDelta(40.6413, a.Lat, 0.0001)
}

func (s *AirportSuite) TestResolveIsCaseAndWhitespaceInsensitive() {
	table, err := LoadReader(strings.NewReader(sampleCSV))
	s.Require().NoError(err)

	a, err := table.Resolve(" AWY \n")
	s.Require().NoError(err)
	s.Equal("AWY", a.Code)
}

func (s *AirportSuite) TestResolveUnknownCodeFails() {
	table, err := LoadReader(strings.NewReader(sampleCSV))
	s.Require().NoError(err)

	_, err = table.Resolve("ZZZ")
	s.Error(err)
}

func (s *AirportSuite) TestLoadReaderRejectsMissingRequiredColumn() {
	csv := "code,lat,lon\nhom,40.0,-73.0\n"
	_, err := LoadReader(strings.NewReader(csv))
	s.Error(err)
}

func (s *AirportSuite) TestLoadReaderRejectsInvalidLatitude() {
	csv := "code,timezone,lat,lon\nhom,UTC,notanumber,-73.0\n"
	_, err := LoadReader(strings.NewReader(csv))
	s.Error(err)
}

func (s *AirportSuite) TestLoadReaderSkipsBlankCodeRows() {
	csv := "code,timezone,lat,lon\n,UTC,0,0\nhom,UTC,1,1\n"
	table, err := LoadReader(strings.NewReader(csv))
	s.Require().NoError(err)
	s.Equal(1, table.Len())
}
