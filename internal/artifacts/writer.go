// Package artifacts persists the outputs of one processed thermal
// measurement: raw and calibrated matrices as CSV, a grayscale PNG, a
// temperature histogram, and a combined metadata record.
package artifacts

import (
	"encoding/json"
	"fmt"
	"image/png"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kestrel-data/thermal.report/internal/fsutil"
	"github.com/kestrel-data/thermal.report/internal/monitoring"
	"github.com/kestrel-data/thermal.report/internal/security"
	"github.com/kestrel-data/thermal.report/internal/thermal"
)

// Files lists the artifact paths written for one measurement. Paths are
// empty for artifacts that were skipped (currently only the histogram,
// for constant-valued frames).
type Files struct {
	RawCSV         string `json:"raw_csv"`
	TemperatureCSV string `json:"temperature_csv"`
	GrayscalePNG   string `json:"grayscale_png"`
	HistogramPNG   string `json:"histogram_png"`
	MetadataJSON   string `json:"metadata_json"`
}

// Writer persists measurement artifacts under a single output
// directory. The zero FS defaults to the OS filesystem.
type Writer struct {
	FS            fsutil.FileSystem
	Dir           string
	HistogramBins int
}

// NewWriter creates a Writer backed by the given filesystem.
func NewWriter(fs fsutil.FileSystem, dir string) *Writer {
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &Writer{FS: fs, Dir: dir, HistogramBins: 40}
}

// Write persists all artifacts for one pipeline result. The original
// record travels into the metadata file so nothing from the vendor
// document is lost.
func (w *Writer) Write(res *thermal.Result, rec *thermal.MeasurementRecord) (*Files, error) {
	if err := w.FS.MkdirAll(w.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := identifierStem(res)
	files := &Files{
		RawCSV:         filepath.Join(w.Dir, base+"_raw.csv"),
		TemperatureCSV: filepath.Join(w.Dir, base+"_temperatures.csv"),
		GrayscalePNG:   filepath.Join(w.Dir, base+"_grayscale.png"),
		MetadataJSON:   filepath.Join(w.Dir, base+"_metadata.json"),
	}

	if err := w.writeRawCSV(files.RawCSV, res.Raw); err != nil {
		return nil, err
	}
	if err := w.writeTemperatureCSV(files.TemperatureCSV, res.Temperatures); err != nil {
		return nil, err
	}
	if err := w.writeGrayscalePNG(files.GrayscalePNG, res.Temperatures); err != nil {
		return nil, err
	}

	if res.Temperatures.Min() == res.Temperatures.Max() {
		monitoring.Logf("skipping histogram for %q: constant-valued frame", res.Identifier)
	} else {
		files.HistogramPNG = filepath.Join(w.Dir, base+"_histogram.png")
		if err := w.writeHistogramPNG(files.HistogramPNG, res); err != nil {
			return nil, err
		}
	}

	if err := w.writeMetadataJSON(files.MetadataJSON, res, rec); err != nil {
		return nil, err
	}

	monitoring.Logf("wrote artifacts for %q under %s", res.Identifier, w.Dir)
	return files, nil
}

// identifierStem derives the artifact base name from the measurement
// identifier, falling back to the parsed measurement ID. Identifiers
// can arrive over the network, so the stem is sanitized before it is
// embedded in file names.
func identifierStem(res *thermal.Result) string {
	stem := filepath.Base(res.Identifier)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	if stem == "" || stem == "." {
		stem = res.Metadata.MeasurementID
	}
	return security.SanitizeFilename(stem)
}

func (w *Writer) writeRawCSV(path string, frame *thermal.RawFrame) error {
	var b strings.Builder
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			if x > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatUint(uint64(frame.At(y, x)), 10))
		}
		b.WriteByte('\n')
	}
	if err := w.FS.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write raw csv: %w", err)
	}
	return nil
}

func (w *Writer) writeTemperatureCSV(path string, frame *thermal.TemperatureFrame) error {
	var b strings.Builder
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			if x > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%.2f", frame.At(y, x))
		}
		b.WriteByte('\n')
	}
	if err := w.FS.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write temperature csv: %w", err)
	}
	return nil
}

func (w *Writer) writeGrayscalePNG(path string, frame *thermal.TemperatureFrame) error {
	f, err := w.FS.Create(path)
	if err != nil {
		return fmt.Errorf("create grayscale png: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, frame.Grayscale()); err != nil {
		return fmt.Errorf("encode grayscale png: %w", err)
	}
	return nil
}

func (w *Writer) writeHistogramPNG(path string, res *thermal.Result) error {
	vals := make(plotter.Values, len(res.Temperatures.Pix))
	for i, v := range res.Temperatures.Pix {
		vals[i] = float64(v)
	}

	bins := w.HistogramBins
	if bins < 2 {
		bins = 40
	}
	hist, err := plotter.NewHist(vals, bins)
	if err != nil {
		return fmt.Errorf("build temperature histogram: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Temperature Distribution - %s", res.Metadata.MeasurementID)
	p.X.Label.Text = "Temperature (°C)"
	p.Y.Label.Text = "Pixels"
	p.Add(hist)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}

	f, err := w.FS.Create(path)
	if err != nil {
		return fmt.Errorf("create histogram png: %w", err)
	}
	defer f.Close()

	if _, err := wt.WriteTo(f); err != nil {
		return fmt.Errorf("write histogram png: %w", err)
	}
	return nil
}

func (w *Writer) writeMetadataJSON(path string, res *thermal.Result, rec *thermal.MeasurementRecord) error {
	record := map[string]any{
		"measurement_id":   res.Metadata.MeasurementID,
		"unit":             res.Metadata.Unit,
		"sensor_type":      res.Metadata.SensorType,
		"sensor_id":        res.Metadata.SensorID,
		"measurement_type": res.Metadata.MeasurementType,
		"processing_info":  res.ProcessingInfo(),
		"frame_fit":        res.Raw.Fit.String(),
		"analysis":         res.Analysis,
	}
	if rec != nil {
		record["original_record"] = rec
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := w.FS.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write metadata json: %w", err)
	}
	return nil
}
