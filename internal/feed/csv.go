// Package feed implements the tabular request/vehicle feed readers
// (C9, SPEC_FULL.md §4.9), mirroring the original_source/main.py pandas
// column layout over plain encoding/csv.
package feed

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"darp-dispatch/internal/models"
)

const timeLayout = "2006/01/02 15:04:05"

// RequestFeed is a time-sorted, cursor-advancing queue of pending
// request rows.
type RequestFeed struct {
	rows   []models.RequestRow
	cursor int
}

// VehicleFeed is the vehicle-row equivalent of RequestFeed.
type VehicleFeed struct {
	rows   []models.VehicleRow
	cursor int
}

// LoadRequests reads the request feed CSV (columns: time, id, pick up,
// drop off, num) and returns a RequestFeed sorted by time ascending.
func LoadRequests(path string) (*RequestFeed, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	rows := make([]models.RequestRow, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		t, err := time.Parse(timeLayout, rec[0])
		if err != nil {
			return nil, errors.Wrapf(err, "request row %d: bad time %q", i, rec[0])
		}
		id, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "request row %d: bad id", i)
		}
		pu, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "request row %d: bad pick up", i)
		}
		do, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "request row %d: bad drop off", i)
		}
		num, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, errors.Wrapf(err, "request row %d: bad num", i)
		}

		rows = append(rows, models.RequestRow{
			Time:    t,
			ID:      id,
			Pickup:  models.Location(pu),
			Dropoff: models.Location(do),
			Num:     num,
		})
	}

	sortRequestRows(rows)
	return &RequestFeed{rows: rows}, nil
}

// LoadVehicles reads the vehicle feed CSV (columns: time, id, location,
// working time, capacity) and returns a VehicleFeed sorted by time
// ascending.
func LoadVehicles(path string) (*VehicleFeed, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	rows := make([]models.VehicleRow, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			continue
		}
		t, err := time.Parse(timeLayout, rec[0])
		if err != nil {
			return nil, errors.Wrapf(err, "vehicle row %d: bad time %q", i, rec[0])
		}
		id, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "vehicle row %d: bad id", i)
		}
		loc, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "vehicle row %d: bad location", i)
		}
		working, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "vehicle row %d: bad working time", i)
		}
		capacity, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, errors.Wrapf(err, "vehicle row %d: bad capacity", i)
		}

		rows = append(rows, models.VehicleRow{
			Time:        t,
			ID:          id,
			Location:    models.Location(loc),
			WorkingTime: working,
			Capacity:    capacity,
		})
	}

	sortVehicleRows(rows)
	return &VehicleFeed{rows: rows}, nil
}

// PopDue removes and returns every row whose Time is <= now, advancing
// the cursor (equivalent to the original dropping admitted rows from
// its in-memory table).
func (f *RequestFeed) PopDue(now time.Time) []models.RequestRow {
	var due []models.RequestRow
	for f.cursor < len(f.rows) && !f.rows[f.cursor].Time.After(now) {
		due = append(due, f.rows[f.cursor])
		f.cursor++
	}
	return due
}

// PopDue is VehicleFeed's equivalent of RequestFeed.PopDue.
func (f *VehicleFeed) PopDue(now time.Time) []models.VehicleRow {
	var due []models.VehicleRow
	for f.cursor < len(f.rows) && !f.rows[f.cursor].Time.After(now) {
		due = append(due, f.rows[f.cursor])
		f.cursor++
	}
	return due
}

// Exhausted reports whether every row has been popped.
func (f *RequestFeed) Exhausted() bool { return f.cursor >= len(f.rows) }
func (f *VehicleFeed) Exhausted() bool { return f.cursor >= len(f.rows) }

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open feed %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read feed %s", path)
		}
		records = append(records, rec)
	}
	return records, nil
}

func sortRequestRows(rows []models.RequestRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
}

func sortVehicleRows(rows []models.VehicleRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
}
