package db

import (
	"encoding/base64"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-data/thermal.report/internal/artifacts"
	"github.com/kestrel-data/thermal.report/internal/thermal"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "measurements.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testResult(t *testing.T, identifier string) *thermal.Result {
	t.Helper()

	samples := []uint16{0, 100, 200, 300}
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], s)
	}
	data := base64.StdEncoding.EncodeToString(buf)
	width, height := 2, 2
	rec := &thermal.MeasurementRecord{Data: &data, Width: &width, Height: &height}

	res, err := thermal.Process(rec, identifier, 30.0)
	require.NoError(t, err)
	return res
}

func TestMigrationOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measurements.db")

	db, err := NewDB(path)
	require.NoError(t, err)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
	require.NoError(t, db.Close())

	// Reopening an already-migrated database must be a no-op.
	db2, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db2.Close())
}

func TestRecordAndGetMeasurement(t *testing.T) {
	db := testDB(t)

	res := testResult(t, "abc_UNIT_01_THERMAL_1T001_measurement.json")
	files := &artifacts.Files{
		RawCSV:       "out/abc_raw.csv",
		GrayscalePNG: "out/abc_grayscale.png",
	}
	require.NoError(t, db.RecordMeasurement("m-1", res, files))

	got, err := db.GetMeasurement("m-1")
	require.NoError(t, err)

	assert.Equal(t, "m-1", got.ID)
	assert.Equal(t, "abc_UNIT_01_THERMAL_1T001_measurement.json", got.Identifier)
	assert.Equal(t, "abc", got.Metadata.MeasurementID)
	assert.Equal(t, "UNIT_01", got.Metadata.Unit)
	assert.Equal(t, "1T001", got.Metadata.SensorID)
	assert.Equal(t, 2, got.Width)
	assert.Equal(t, 2, got.Height)
	assert.Equal(t, 0.04, got.Gain)
	assert.Equal(t, -273.15, got.Offset)
	assert.Equal(t, "exact", got.FrameFit)
	assert.Equal(t, 0, got.RawMin)
	assert.Equal(t, 300, got.RawMax)
	assert.InDelta(t, -267.15, got.MeanTemp, 1e-3)
	assert.Equal(t, 0, got.HotspotCount)
	assert.Equal(t, "out/abc_raw.csv", got.Files.RawCSV)
	assert.Empty(t, got.Files.HistogramPNG)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetMeasurementNotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetMeasurement("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMeasurements(t *testing.T) {
	db := testDB(t)

	for _, id := range []string{"m-1", "m-2", "m-3"} {
		require.NoError(t, db.RecordMeasurement(id, testResult(t, id), nil))
	}

	all, err := db.ListMeasurements(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := db.ListMeasurements(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecordMeasurementDuplicateID(t *testing.T) {
	db := testDB(t)

	res := testResult(t, "dup")
	require.NoError(t, db.RecordMeasurement("m-1", res, nil))
	assert.Error(t, db.RecordMeasurement("m-1", res, nil))
}
