package thermal

import "image"

// FrameFit records how the decoded sample count was reconciled against
// the expected width*height geometry.
type FrameFit int

const (
	// FitExact means the payload carried exactly width*height samples.
	FitExact FrameFit = iota
	// FitPadded means the payload was short and the tail of the frame
	// was filled with zero samples.
	FitPadded
	// FitTruncated means the payload was long and the surplus samples
	// were discarded.
	FitTruncated
)

func (f FrameFit) String() string {
	switch f {
	case FitExact:
		return "exact"
	case FitPadded:
		return "padded"
	case FitTruncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// RawFrame is a height×width matrix of raw mono16 sensor counts in
// row-major order. Fit reports the size reconciliation applied while
// decoding, so callers can surface repaired frames instead of silently
// absorbing them.
type RawFrame struct {
	Width  int
	Height int
	Pix    []uint16
	Fit    FrameFit
}

// At returns the sample at the given row and column.
func (f *RawFrame) At(row, col int) uint16 {
	return f.Pix[row*f.Width+col]
}

// Min returns the smallest sample, or 0 for an empty frame.
func (f *RawFrame) Min() uint16 {
	if len(f.Pix) == 0 {
		return 0
	}
	out := f.Pix[0]
	for _, v := range f.Pix[1:] {
		if v < out {
			out = v
		}
	}
	return out
}

// Max returns the largest sample, or 0 for an empty frame.
func (f *RawFrame) Max() uint16 {
	var out uint16
	for _, v := range f.Pix {
		if v > out {
			out = v
		}
	}
	return out
}

// TemperatureFrame is a calibrated height×width matrix of temperatures
// in the unit implied by the calibration offset (Celsius with the
// sensor defaults). Immutable once produced.
type TemperatureFrame struct {
	Width  int
	Height int
	Pix    []float32
}

// At returns the temperature at the given row and column.
func (f *TemperatureFrame) At(row, col int) float32 {
	return f.Pix[row*f.Width+col]
}

// Min returns the coldest cell, or 0 for an empty frame.
func (f *TemperatureFrame) Min() float32 {
	if len(f.Pix) == 0 {
		return 0
	}
	out := f.Pix[0]
	for _, v := range f.Pix[1:] {
		if v < out {
			out = v
		}
	}
	return out
}

// Max returns the hottest cell, or 0 for an empty frame.
func (f *TemperatureFrame) Max() float32 {
	if len(f.Pix) == 0 {
		return 0
	}
	out := f.Pix[0]
	for _, v := range f.Pix[1:] {
		if v > out {
			out = v
		}
	}
	return out
}

// Grayscale reduces the frame to an 8-bit image by min-max
// normalization: 255 * (x - min) / (max - min). A constant-valued frame
// would divide by zero, so it maps every pixel to 0 instead.
func (f *TemperatureFrame) Grayscale() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	lo, hi := f.Min(), f.Max()
	if hi == lo {
		return img
	}
	delta := float64(hi) - float64(lo)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := float64(f.Pix[y*f.Width+x]) - float64(lo)
			img.Pix[img.Stride*y+x] = uint8(255 * v / delta)
		}
	}
	return img
}
