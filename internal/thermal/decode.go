package thermal

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/kestrel-data/thermal.report/internal/monitoring"
)

// DecodeError reports a payload that is not valid standard base64. The
// original cause is preserved and available through Unwrap.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode mono16 payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeMono16 decodes a base64 mono16 payload into a RawFrame of the
// requested geometry. The decoded bytes are reinterpreted as
// little-endian uint16 samples in row-major order.
//
// The sample count is reconciled deterministically against
// width*height: a short payload is copied into the prefix of a
// zero-filled frame, a long payload is truncated, and the branch taken
// is recorded in the frame's Fit field. Zero padding (rather than NaN
// or repetition) is load-bearing: it feeds directly into computed
// minima and means downstream.
func DecodeMono16(encoded string, width, height int) (*RawFrame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame geometry %dx%d", width, height)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	samples := make([]uint16, len(raw)/2)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}

	expected := width * height
	fit := FitExact
	switch {
	case len(samples) < expected:
		padded := make([]uint16, expected)
		copy(padded, samples)
		samples = padded
		fit = FitPadded
	case len(samples) > expected:
		samples = samples[:expected]
		fit = FitTruncated
	}

	frame := &RawFrame{Width: width, Height: height, Pix: samples, Fit: fit}
	monitoring.Logf("decoded mono16 frame %dx%d: fit=%s raw range %d-%d",
		width, height, fit, frame.Min(), frame.Max())
	return frame, nil
}
