// Package rosterio loads a Roster from a denormalized CSV fixture: one row
// per flight segment, grouped into duties by duty_id. This is fixture
// plumbing for the CLI and tests only — not a roster-ingestion system, and
// in particular not a PDF parser; a real operator feed is expected to
// arrive pre-normalized into domain.Roster values.
package rosterio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"fatiguecore/internal/domain"
)

// Load reads a roster fixture CSV from path.
func Load(path string) (domain.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Roster{}, fmt.Errorf("open roster file %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(f)
}

var requiredColumns = []string{
	"roster_id", "pilot_id", "home_base_tz", "home_base_code", "year", "month",
	"duty_id", "date", "report_utc", "release_utc",
	"flight_no", "dep_code", "dep_tz", "dep_lat", "dep_lon",
	"arr_code", "arr_tz", "arr_lat", "arr_lon",
	"sched_dep_utc", "sched_arr_utc", "block_hours",
}

// LoadReader parses the roster fixture CSV from r.
func LoadReader(r io.Reader) (domain.Roster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return domain.Roster{}, fmt.Errorf("read roster header: %w", err)
	}
	cols := columnIndex(header)
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return domain.Roster{}, fmt.Errorf("roster file missing required column %q", c)
		}
	}

	type segRow struct {
		dutyID string
		date   time.Time
		report time.Time
		release time.Time
		seg    domain.FlightSegment
	}

	var (
		roster  domain.Roster
		rows    []segRow
		lineNum = 1
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return domain.Roster{}, fmt.Errorf("roster file line %d: %w", lineNum, err)
		}

		get := func(col string) string { return strings.TrimSpace(record[cols[col]]) }

		if roster.RosterID == "" {
			year, err := strconv.Atoi(get("year"))
			if err != nil {
				return domain.Roster{}, fmt.Errorf("roster file line %d: invalid year: %w", lineNum, err)
			}
			month, err := strconv.Atoi(get("month"))
			if err != nil {
				return domain.Roster{}, fmt.Errorf("roster file line %d: invalid month: %w", lineNum, err)
			}
			roster = domain.Roster{
				RosterID:     get("roster_id"),
				PilotID:      get("pilot_id"),
				Month:        domain.RosterMonth{Year: year, Month: month},
				HomeBaseTZ:   get("home_base_tz"),
				HomeBaseCode: get("home_base_code"),
			}
		}

		report, err := time.Parse(time.RFC3339, get("report_utc"))
		if err != nil {
			return domain.Roster{}, fmt.Errorf("roster file line %d: invalid report_utc: %w", lineNum, err)
		}
		release, err := time.Parse(time.RFC3339, get("release_utc"))
		if err != nil {
			return domain.Roster{}, fmt.Errorf("roster file line %d: invalid release_utc: %w", lineNum, err)
		}
		date, err := time.Parse("2006-01-02", get("date"))
		if err != nil {
			return domain.Roster{}, fmt.Errorf("roster file line %d: invalid date: %w", lineNum, err)
		}
		schedDep, err := time.Parse(time.RFC3339, get("sched_dep_utc"))
		if err != nil {
			return domain.Roster{}, fmt.Errorf("roster file line %d: invalid sched_dep_utc: %w", lineNum, err)
		}
		schedArr, err := time.Parse(time.RFC3339, get("sched_arr_utc"))
		if err != nil {
			return domain.Roster{}, fmt.Errorf("roster file line %d: invalid sched_arr_utc: %w", lineNum, err)
		}
		blockHours, err := strconv.ParseFloat(get("block_hours"), 64)
		if err != nil {
			return domain.Roster{}, fmt.Errorf("roster file line %d: invalid block_hours: %w", lineNum, err)
		}
		depLat, _ := strconv.ParseFloat(get("dep_lat"), 64)
		depLon, _ := strconv.ParseFloat(get("dep_lon"), 64)
		arrLat, _ := strconv.ParseFloat(get("arr_lat"), 64)
		arrLon, _ := strconv.ParseFloat(get("arr_lon"), 64)

		seg := domain.FlightSegment{
			FlightNo:    get("flight_no"),
			Dep:         domain.Airport{Code: get("dep_code"), TZ: get("dep_tz"), Lat: depLat, Lon: depLon},
			Arr:         domain.Airport{Code: get("arr_code"), TZ: get("arr_tz"), Lat: arrLat, Lon: arrLon},
			SchedDepUTC: schedDep,
			SchedArrUTC: schedArr,
			BlockHours:  blockHours,
		}

		rows = append(rows, segRow{
			dutyID:  get("duty_id"),
			date:    date,
			report:  report,
			release: release,
			seg:     seg,
		})
	}

	order := make([]string, 0)
	grouped := make(map[string][]segRow)
	for _, row := range rows {
		if _, ok := grouped[row.dutyID]; !ok {
			order = append(order, row.dutyID)
		}
		grouped[row.dutyID] = append(grouped[row.dutyID], row)
	}

	duties := make([]domain.Duty, 0, len(order))
	for _, dutyID := range order {
		group := grouped[dutyID]
		sort.Slice(group, func(i, j int) bool { return group[i].seg.SchedDepUTC.Before(group[j].seg.SchedDepUTC) })

		segs := make([]domain.FlightSegment, len(group))
		for i, g := range group {
			segs[i] = g.seg
		}

		d, err := domain.NewDuty(dutyID, group[0].date, group[0].report, group[0].release, segs, roster.HomeBaseTZ, roster.HomeBaseCode)
		if err != nil {
			return domain.Roster{}, err
		}
		duties = append(duties, d)
	}

	sort.Slice(duties, func(i, j int) bool { return duties[i].ReportUTC.Before(duties[j].ReportUTC) })
	roster.Duties = duties

	return roster, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}
