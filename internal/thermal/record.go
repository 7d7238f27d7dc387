// Package thermal decodes and calibrates mono16 thermal measurement
// payloads produced by inspection robots.
//
// A measurement arrives as a JSON document carrying a base64-encoded
// frame of unsigned 16-bit little-endian sensor counts plus optional
// geometry and radiometric calibration coefficients. The pipeline is
// a single pass: decode the payload into a RawFrame, apply the linear
// calibration to obtain a TemperatureFrame, then derive statistics and
// hotspots. Each invocation works on its own buffers, so independent
// records can be processed concurrently by the caller.
package thermal

import (
	"encoding/json"
	"errors"
)

// Default sensor parameters for the vendor thermal camera. The gain and
// offset implement the radiometric conversion to Celsius; the Kelvin
// shift is folded into the offset.
const (
	DefaultWidth  = 336
	DefaultHeight = 256
	DefaultGain   = 0.04
	DefaultOffset = -273.15

	// DefaultHotspotThreshold is the hotspot cutoff in the calibrated
	// unit (Celsius with the default offset).
	DefaultHotspotThreshold = 30.0
)

// ErrMissingData is returned when a measurement record lacks the
// required "data" field.
var ErrMissingData = errors.New(`measurement record missing required "data" field`)

// MeasurementRecord is one thermal measurement as downloaded from the
// inspection API. Known fields use pointers so absent values can fall
// back to the sensor defaults; any other top-level vendor fields are
// preserved verbatim in Extra and round-trip through JSON untouched.
type MeasurementRecord struct {
	Data   *string  `json:"data,omitempty"`
	Width  *int     `json:"width,omitempty"`
	Height *int     `json:"height,omitempty"`
	Gain   *float64 `json:"gain,omitempty"`
	Offset *float64 `json:"offset,omitempty"`

	// Extra holds vendor fields the pipeline does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownRecordKeys are the top-level JSON keys consumed by the pipeline.
var knownRecordKeys = []string{"data", "width", "height", "gain", "offset"}

// UnmarshalJSON decodes the known fields and stashes everything else in
// Extra so re-serialized records keep their vendor fields.
func (r *MeasurementRecord) UnmarshalJSON(data []byte) error {
	type alias MeasurementRecord
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownRecordKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}
	a.Extra = all

	*r = MeasurementRecord(a)
	return nil
}

// MarshalJSON merges the known fields back with the preserved vendor
// fields.
func (r MeasurementRecord) MarshalJSON() ([]byte, error) {
	type alias MeasurementRecord
	known, err := json.Marshal(alias(r))
	if err != nil {
		return nil, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// GetWidth returns the frame width or the sensor default.
func (r *MeasurementRecord) GetWidth() int {
	if r.Width == nil || *r.Width <= 0 {
		return DefaultWidth
	}
	return *r.Width
}

// GetHeight returns the frame height or the sensor default.
func (r *MeasurementRecord) GetHeight() int {
	if r.Height == nil || *r.Height <= 0 {
		return DefaultHeight
	}
	return *r.Height
}

// GetGain returns the calibration gain or the sensor default.
func (r *MeasurementRecord) GetGain() float64 {
	if r.Gain == nil {
		return DefaultGain
	}
	return *r.Gain
}

// GetOffset returns the calibration offset or the sensor default.
func (r *MeasurementRecord) GetOffset() float64 {
	if r.Offset == nil {
		return DefaultOffset
	}
	return *r.Offset
}
