package thermal

import "fmt"

// Calibration holds the radiometric gain and offset converting raw
// sensor counts to a physical temperature. The coefficients are trusted
// as supplied; no clamping or unit validation is applied.
type Calibration struct {
	Gain   float64
	Offset float64
}

// DefaultCalibration returns the vendor sensor calibration, producing
// Celsius output.
func DefaultCalibration() Calibration {
	return Calibration{Gain: DefaultGain, Offset: DefaultOffset}
}

// Convert applies temperature = gain*raw + offset to every cell. The
// arithmetic is done in float32 to match the precision of the sensor's
// reference tooling.
func (c Calibration) Convert(raw *RawFrame) *TemperatureFrame {
	out := &TemperatureFrame{
		Width:  raw.Width,
		Height: raw.Height,
		Pix:    make([]float32, len(raw.Pix)),
	}
	gain, offset := float32(c.Gain), float32(c.Offset)
	for i, v := range raw.Pix {
		out.Pix[i] = gain*float32(v) + offset
	}
	return out
}

// Formula renders the conversion as a human-readable string for
// inclusion in processing metadata.
func (c Calibration) Formula() string {
	return fmt.Sprintf("temperature = %g * raw_value + %g", c.Gain, c.Offset)
}
