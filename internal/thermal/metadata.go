package thermal

import (
	"path/filepath"
	"strings"
)

// Metadata is parsed from a measurement's filename or identifier. The
// naming convention is underscore-delimited positional segments:
//
//	{measurement_id}_{unit_a}_{unit_b}_{sensor_type}_{sensor_id}_{measurement_type}
//
// Metadata is informational only; it never affects the numeric
// pipeline, so parsing is deliberately permissive.
type Metadata struct {
	MeasurementID   string `json:"measurement_id"`
	Unit            string `json:"unit"`
	SensorType      string `json:"sensor_type"`
	SensorID        string `json:"sensor_id"`
	MeasurementType string `json:"measurement_type"`
}

const unknownSegment = "unknown"

// ParseIdentifier extracts Metadata from a filename or identifier.
// Directory and extension are stripped first. Absent segments default
// to "unknown", except sensor_type which defaults to "THERMAL".
func ParseIdentifier(name string) Metadata {
	stem := filepath.Base(name)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	parts := strings.Split(stem, "_")

	md := Metadata{
		MeasurementID:   unknownSegment,
		Unit:            unknownSegment,
		SensorType:      "THERMAL",
		SensorID:        unknownSegment,
		MeasurementType: unknownSegment,
	}
	if len(parts) > 0 && parts[0] != "" {
		md.MeasurementID = parts[0]
	}
	if len(parts) > 2 {
		// The unit name itself contains an underscore, e.g. "UNIT_01".
		md.Unit = parts[1] + "_" + parts[2]
	}
	if len(parts) > 3 {
		md.SensorType = parts[3]
	}
	if len(parts) > 4 {
		md.SensorID = parts[4]
	}
	if len(parts) > 5 {
		md.MeasurementType = parts[5]
	}
	return md
}
