// Package airport provides a read-only IATA-code lookup backed by a CSV
// reference table, the shape of Airport value type grounded on the
// aviation-domain example package of the same name, loaded via the
// CSV-detection idiom the teacher uses for Garmin export ingestion.
package airport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fatiguecore/internal/domain"
)

// Table is an in-memory IATA code → domain.Airport lookup table.
type Table struct {
	byCode map[string]domain.Airport
}

// Load reads a CSV reference table from path with header columns
// code,timezone,lat,lon (additional columns are ignored) and returns a
// ready-to-use Table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airport table %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader parses the airport CSV table from r.
func LoadReader(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read airport table header: %w", err)
	}
	cols := columnIndex(header)

	for _, required := range []string{"code", "timezone", "lat", "lon"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("airport table missing required column %q", required)
		}
	}

	t := &Table{byCode: make(map[string]domain.Airport)}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("airport table line %d: %w", line, err)
		}

		code := strings.ToUpper(strings.TrimSpace(record[cols["code"]]))
		if code == "" {
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[cols["lat"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("airport table line %d: invalid lat for %s: %w", line, code, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[cols["lon"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("airport table line %d: invalid lon for %s: %w", line, code, err)
		}

		t.byCode[code] = domain.Airport{
			Code: code,
			TZ:   strings.TrimSpace(record[cols["timezone"]]),
			Lat:  lat,
			Lon:  lon,
		}
	}

	return t, nil
}

// Resolve implements domain.AirportLookup.
func (t *Table) Resolve(code string) (domain.Airport, error) {
	a, ok := t.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return domain.Airport{}, fmt.Errorf("unknown airport code: %s", code)
	}
	return a, nil
}

// Len reports how many airports the table holds.
func (t *Table) Len() int {
	return len(t.byCode)
}

// columnIndex maps lower-cased header names to their column index.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}
