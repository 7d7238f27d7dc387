package thermal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLinearity(t *testing.T) {
	t.Parallel()

	raw := &RawFrame{Width: 4, Height: 4, Pix: rampSamples(16, 100)}
	cal := Calibration{Gain: 0.04, Offset: -273.15}
	temps := cal.Convert(raw)

	require.Len(t, temps.Pix, 16)
	for i, v := range raw.Pix {
		want := float32(0.04)*float32(v) + float32(-273.15)
		assert.Equal(t, want, temps.Pix[i], "cell %d", i)
	}

	// Concrete corners from the sensor reference tooling.
	assert.InDelta(t, -273.15, float64(temps.At(0, 0)), 1e-4)
	assert.InDelta(t, -213.15, float64(temps.At(3, 3)), 1e-4)
}

func TestConvertNoClamping(t *testing.T) {
	t.Parallel()

	raw := &RawFrame{Width: 2, Height: 1, Pix: []uint16{0, 0xFFFF}}
	temps := Calibration{Gain: 1000, Offset: 0}.Convert(raw)
	assert.Equal(t, float32(0), temps.At(0, 0))
	assert.Equal(t, float32(65535000), temps.At(0, 1))
}

func TestDefaultCalibrationFormula(t *testing.T) {
	t.Parallel()

	cal := DefaultCalibration()
	assert.Equal(t, "temperature = 0.04 * raw_value + -273.15", cal.Formula())
}

func TestGrayscaleNormalization(t *testing.T) {
	t.Parallel()

	frame := &TemperatureFrame{Width: 3, Height: 1, Pix: []float32{10, 20, 30}}
	img := frame.Grayscale()
	assert.Equal(t, uint8(0), img.Pix[0])
	assert.Equal(t, uint8(127), img.Pix[1])
	assert.Equal(t, uint8(255), img.Pix[2])
}

func TestGrayscaleConstantFrame(t *testing.T) {
	t.Parallel()

	// A constant frame would divide by zero; policy is all-black.
	frame := &TemperatureFrame{Width: 2, Height: 2, Pix: []float32{20, 20, 20, 20}}
	img := frame.Grayscale()
	for i, p := range img.Pix {
		assert.Zero(t, p, "pixel %d", i)
	}
}
