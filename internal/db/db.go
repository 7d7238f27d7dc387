// Package db stores processed thermal measurements in sqlite.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kestrel-data/thermal.report/internal/artifacts"
	"github.com/kestrel-data/thermal.report/internal/thermal"
)

// ErrNotFound is returned when a measurement id has no row.
var ErrNotFound = errors.New("measurement not found")

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the measurement database at path and brings
// the schema up to date.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate measurement schema: %w", err)
	}
	return db, nil
}

// Measurement is one stored row: identity, parsed metadata, processing
// parameters, summary statistics, and artifact paths.
type Measurement struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`

	Metadata thermal.Metadata `json:"metadata"`

	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Gain     float64 `json:"gain"`
	Offset   float64 `json:"offset"`
	FrameFit string  `json:"frame_fit"`
	RawMin   int     `json:"raw_min"`
	RawMax   int     `json:"raw_max"`

	MeanTemp   float64 `json:"mean_temp"`
	StdTemp    float64 `json:"std_temp"`
	MinTemp    float64 `json:"min_temp"`
	MaxTemp    float64 `json:"max_temp"`
	MedianTemp float64 `json:"median_temp"`

	HotspotThreshold  float64 `json:"hotspot_threshold"`
	HotspotCount      int     `json:"hotspot_count"`
	HotspotPercentage float64 `json:"hotspot_percentage"`

	Files artifacts.Files `json:"files"`

	CreatedAt time.Time `json:"created_at"`
}

// RecordMeasurement inserts one processed measurement. The artifact
// file set may be nil when artifacts were not written.
func (db *DB) RecordMeasurement(id string, res *thermal.Result, files *artifacts.Files) error {
	if files == nil {
		files = &artifacts.Files{}
	}

	_, err := db.Exec(`
		INSERT INTO measurements (
			id, identifier,
			measurement_id, unit, sensor_type, sensor_id, measurement_type,
			width, height, cal_gain, cal_offset, frame_fit, raw_min, raw_max,
			mean_temp, std_temp, min_temp, max_temp, median_temp,
			hotspot_threshold, hotspot_count, hotspot_percentage,
			raw_csv, temperature_csv, grayscale_png, histogram_png, metadata_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, res.Identifier,
		res.Metadata.MeasurementID, res.Metadata.Unit, res.Metadata.SensorType,
		res.Metadata.SensorID, res.Metadata.MeasurementType,
		res.Raw.Width, res.Raw.Height, res.Calibration.Gain, res.Calibration.Offset,
		res.Raw.Fit.String(), int(res.Raw.Min()), int(res.Raw.Max()),
		res.Analysis.Mean, res.Analysis.Std, res.Analysis.Min, res.Analysis.Max,
		res.Analysis.Median,
		res.Analysis.Hotspots.Threshold, res.Analysis.Hotspots.Count,
		res.Analysis.Hotspots.Percentage,
		files.RawCSV, files.TemperatureCSV, files.GrayscalePNG,
		files.HistogramPNG, files.MetadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert measurement: %w", err)
	}
	return nil
}

const measurementColumns = `
	id, identifier,
	measurement_id, unit, sensor_type, sensor_id, measurement_type,
	width, height, cal_gain, cal_offset, frame_fit, raw_min, raw_max,
	mean_temp, std_temp, min_temp, max_temp, median_temp,
	hotspot_threshold, hotspot_count, hotspot_percentage,
	raw_csv, temperature_csv, grayscale_png, histogram_png, metadata_json,
	created_at`

func scanMeasurement(row interface{ Scan(...any) error }) (*Measurement, error) {
	var m Measurement
	err := row.Scan(
		&m.ID, &m.Identifier,
		&m.Metadata.MeasurementID, &m.Metadata.Unit, &m.Metadata.SensorType,
		&m.Metadata.SensorID, &m.Metadata.MeasurementType,
		&m.Width, &m.Height, &m.Gain, &m.Offset, &m.FrameFit, &m.RawMin, &m.RawMax,
		&m.MeanTemp, &m.StdTemp, &m.MinTemp, &m.MaxTemp, &m.MedianTemp,
		&m.HotspotThreshold, &m.HotspotCount, &m.HotspotPercentage,
		&m.Files.RawCSV, &m.Files.TemperatureCSV, &m.Files.GrayscalePNG,
		&m.Files.HistogramPNG, &m.Files.MetadataJSON,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMeasurements returns the most recent measurements, newest first.
// A non-positive limit defaults to 100.
func (db *DB) ListMeasurements(limit int) ([]*Measurement, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.Query(
		`SELECT `+measurementColumns+` FROM measurements ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var out []*Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMeasurement returns a single measurement by id.
func (db *DB) GetMeasurement(id string) (*Measurement, error) {
	row := db.QueryRow(`SELECT `+measurementColumns+` FROM measurements WHERE id = ?`, id)
	m, err := scanMeasurement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	return m, nil
}
