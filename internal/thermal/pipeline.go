package thermal

import (
	"github.com/kestrel-data/thermal.report/internal/monitoring"
)

// Result carries every value derived from one measurement record. All
// fields are freshly built per invocation and owned by the caller.
type Result struct {
	Identifier   string
	Metadata     Metadata
	Raw          *RawFrame
	Temperatures *TemperatureFrame
	Calibration  Calibration
	Analysis     Analysis
}

// ProcessingInfo returns the processing-parameters record persisted
// alongside the extracted metadata.
func (r *Result) ProcessingInfo() map[string]any {
	return map[string]any{
		"width":              r.Raw.Width,
		"height":             r.Raw.Height,
		"gain":               r.Calibration.Gain,
		"offset":             r.Calibration.Offset,
		"min_temperature":    float64(r.Temperatures.Min()),
		"max_temperature":    float64(r.Temperatures.Max()),
		"raw_min":            int(r.Raw.Min()),
		"raw_max":            int(r.Raw.Max()),
		"conversion_formula": r.Calibration.Formula(),
	}
}

// Process runs the full pipeline for one measurement record:
// decode → calibrate → analyze, with metadata extracted independently
// from the identifier. It fails only on a missing data field or an
// undecodable payload; size mismatches are repaired and reported via
// the raw frame's Fit field.
func Process(rec *MeasurementRecord, identifier string, threshold float64) (*Result, error) {
	if rec.Data == nil {
		return nil, ErrMissingData
	}

	raw, err := DecodeMono16(*rec.Data, rec.GetWidth(), rec.GetHeight())
	if err != nil {
		return nil, err
	}

	cal := Calibration{Gain: rec.GetGain(), Offset: rec.GetOffset()}
	temps := cal.Convert(raw)
	analysis := Analyze(temps, threshold)

	monitoring.Logf("processed measurement %q: %.2f-%.2f°C, %d hotspots (%.2f%%) above %.1f",
		identifier, analysis.Min, analysis.Max,
		analysis.Hotspots.Count, analysis.Hotspots.Percentage, threshold)

	return &Result{
		Identifier:   identifier,
		Metadata:     ParseIdentifier(identifier),
		Raw:          raw,
		Temperatures: temps,
		Calibration:  cal,
		Analysis:     analysis,
	}, nil
}
