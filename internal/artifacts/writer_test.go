package artifacts

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-data/thermal.report/internal/fsutil"
	"github.com/kestrel-data/thermal.report/internal/thermal"
)

func testResult(t *testing.T, samples []uint16, width, height int, identifier string) (*thermal.Result, *thermal.MeasurementRecord) {
	t.Helper()

	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], s)
	}
	data := base64.StdEncoding.EncodeToString(buf)
	rec := &thermal.MeasurementRecord{Data: &data, Width: &width, Height: &height}

	res, err := thermal.Process(rec, identifier, thermal.DefaultHotspotThreshold)
	require.NoError(t, err)
	return res, rec
}

func TestWriterWritesAllArtifacts(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w := NewWriter(mfs, "out")

	res, rec := testResult(t, []uint16{0, 100, 200, 300}, 2, 2,
		"abc_UNIT_01_THERMAL_1T001_measurement.json")
	files, err := w.Write(res, rec)
	require.NoError(t, err)

	for _, path := range []string{
		files.RawCSV, files.TemperatureCSV, files.GrayscalePNG,
		files.HistogramPNG, files.MetadataJSON,
	} {
		require.NotEmpty(t, path)
		assert.True(t, mfs.Exists(path), "expected artifact %s", path)
	}
	assert.True(t, strings.HasPrefix(files.RawCSV, "out/"))
}

func TestWriterRawCSV(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w := NewWriter(mfs, "out")

	res, rec := testResult(t, []uint16{0, 100, 200, 300}, 2, 2, "m")
	files, err := w.Write(res, rec)
	require.NoError(t, err)

	data, err := mfs.ReadFile(files.RawCSV)
	require.NoError(t, err)
	assert.Equal(t, "0,100\n200,300\n", string(data))
}

func TestWriterTemperatureCSV(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w := NewWriter(mfs, "out")

	res, rec := testResult(t, []uint16{0, 100, 200, 300}, 2, 2, "m")
	files, err := w.Write(res, rec)
	require.NoError(t, err)

	data, err := mfs.ReadFile(files.TemperatureCSV)
	require.NoError(t, err)
	assert.Equal(t, "-273.15,-269.15\n-265.15,-261.15\n", string(data))
}

func TestWriterGrayscalePNG(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w := NewWriter(mfs, "out")

	res, rec := testResult(t, []uint16{0, 100, 200, 300}, 2, 2, "m")
	files, err := w.Write(res, rec)
	require.NoError(t, err)

	data, err := mfs.ReadFile(files.GrayscalePNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 2, bounds.Dx())
	assert.Equal(t, 2, bounds.Dy())
}

func TestWriterSkipsHistogramForConstantFrame(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w := NewWriter(mfs, "out")

	res, rec := testResult(t, []uint16{500, 500, 500, 500}, 2, 2, "flat")
	files, err := w.Write(res, rec)
	require.NoError(t, err)

	assert.Empty(t, files.HistogramPNG)
	assert.True(t, mfs.Exists(files.GrayscalePNG))
}

func TestWriterMetadataJSON(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w := NewWriter(mfs, "out")

	res, rec := testResult(t, []uint16{0, 100, 200, 300}, 2, 2,
		"abc_UNIT_01_THERMAL_1T001_measurement.json")
	files, err := w.Write(res, rec)
	require.NoError(t, err)

	data, err := mfs.ReadFile(files.MetadataJSON)
	require.NoError(t, err)

	var md map[string]any
	require.NoError(t, json.Unmarshal(data, &md))

	assert.Equal(t, "abc", md["measurement_id"])
	assert.Equal(t, "UNIT_01", md["unit"])
	assert.Equal(t, "1T001", md["sensor_id"])
	assert.Equal(t, "exact", md["frame_fit"])

	info, ok := md["processing_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "temperature = 0.04 * raw_value + -273.15", info["conversion_formula"])
	assert.Equal(t, float64(2), info["width"])
	assert.Equal(t, float64(0), info["raw_min"])
	assert.Equal(t, float64(300), info["raw_max"])

	orig, ok := md["original_record"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, orig, "data")
}
