// Package ingest glues the pipeline together: it takes a measurement
// record (from an HTTP upload, a watched inbox file, or the CLI), runs
// the thermal pipeline, writes artifacts, and stores the summary row.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kestrel-data/thermal.report/internal/artifacts"
	"github.com/kestrel-data/thermal.report/internal/config"
	"github.com/kestrel-data/thermal.report/internal/db"
	"github.com/kestrel-data/thermal.report/internal/monitoring"
	"github.com/kestrel-data/thermal.report/internal/thermal"
)

// Processor runs the full ingest path for one measurement at a time.
// DB may be nil for offline conversion (artifacts only).
type Processor struct {
	Cfg    *config.ProcessingConfig
	Writer *artifacts.Writer
	DB     *db.DB
}

// Processed reports everything produced for one measurement.
type Processed struct {
	ID     string           `json:"id"`
	Result *thermal.Result  `json:"-"`
	Files  *artifacts.Files `json:"files"`
}

// applyDefaults fills record fields that are absent with the configured
// sensor defaults, so operator overrides in the config file win over
// the built-in constants.
func (p *Processor) applyDefaults(rec *thermal.MeasurementRecord) {
	if rec.Width == nil {
		w := p.Cfg.GetSensorWidth()
		rec.Width = &w
	}
	if rec.Height == nil {
		h := p.Cfg.GetSensorHeight()
		rec.Height = &h
	}
	if rec.Gain == nil {
		g := p.Cfg.GetGain()
		rec.Gain = &g
	}
	if rec.Offset == nil {
		o := p.Cfg.GetOffset()
		rec.Offset = &o
	}
}

// ProcessRecord runs one record through decode → calibrate → analyze,
// persists artifacts, and records the measurement when a DB is
// attached. An empty identifier gets a generated one.
func (p *Processor) ProcessRecord(rec *thermal.MeasurementRecord, identifier string) (*Processed, error) {
	if identifier == "" {
		identifier = uuid.NewString()
	}
	p.applyDefaults(rec)

	res, err := thermal.Process(rec, identifier, p.Cfg.GetHotspotThreshold())
	if err != nil {
		return nil, err
	}

	files, err := p.Writer.Write(res, rec)
	if err != nil {
		return nil, fmt.Errorf("write artifacts for %q: %w", identifier, err)
	}

	out := &Processed{ID: uuid.NewString(), Result: res, Files: files}
	if p.DB != nil {
		if err := p.DB.RecordMeasurement(out.ID, res, files); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ProcessFile loads a measurement JSON document from disk and processes
// it, using the file name as the metadata identifier.
func (p *Processor) ProcessFile(path string) (*Processed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read measurement file: %w", err)
	}

	var rec thermal.MeasurementRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse measurement file %s: %w", path, err)
	}

	return p.ProcessRecord(&rec, filepath.Base(path))
}

// ProcessPath processes a single file or every *.json file directly
// under a directory, logging per-file failures without aborting the
// batch. It returns the successfully processed measurements.
func (p *Processor) ProcessPath(path string) ([]*Processed, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		one, err := p.ProcessFile(path)
		if err != nil {
			return nil, err
		}
		return []*Processed{one}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var out []*Processed
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		one, err := p.ProcessFile(filepath.Join(path, e.Name()))
		if err != nil {
			monitoring.Logf("skipping %s: %v", e.Name(), err)
			continue
		}
		out = append(out, one)
	}
	return out, nil
}
