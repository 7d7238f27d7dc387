// Package api exposes the measurement pipeline over HTTP: upload a
// vendor measurement document, list and inspect stored measurements,
// and fetch rendered artifacts.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kestrel-data/thermal.report/internal/db"
	"github.com/kestrel-data/thermal.report/internal/ingest"
	"github.com/kestrel-data/thermal.report/internal/security"
	"github.com/kestrel-data/thermal.report/internal/thermal"
)

// ANSI escape codes for request log colouring
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxUploadBytes bounds a measurement upload. A 336x256 mono16 frame is
// ~229KB base64-encoded, so this leaves generous headroom for vendor
// metadata.
const maxUploadBytes = 8 << 20

type Server struct {
	db        *db.DB
	processor *ingest.Processor
}

func NewServer(database *db.DB, processor *ingest.Processor) *Server {
	return &Server{
		db:        database,
		processor: processor,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/measurements", s.handleMeasurements)
	mux.HandleFunc("/api/measurement", s.showMeasurement)
	mux.HandleFunc("/api/grayscale", s.serveGrayscale)
	mux.HandleFunc("/api/charts/temperatures", s.temperatureChart)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode json response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleMeasurements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listMeasurements(w, r)
	case http.MethodPost:
		s.createMeasurement(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listMeasurements(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	measurements, err := s.db.ListMeasurements(limit)
	if err != nil {
		log.Printf("failed to list measurements: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to list measurements")
		return
	}
	if measurements == nil {
		measurements = []*db.Measurement{}
	}
	s.writeJSON(w, http.StatusOK, measurements)
}

// createMeasurement accepts one vendor measurement document as the
// request body and runs it through the full pipeline. The optional
// ?name= query parameter supplies the identifier whose underscore
// segments carry the metadata; without it a random identifier is used
// and the metadata fields stay at their defaults.
func (s *Server) createMeasurement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var rec thermal.MeasurementRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid measurement document: %v", err))
		return
	}

	processed, err := s.processor.ProcessRecord(&rec, r.URL.Query().Get("name"))
	if err != nil {
		var decodeErr *thermal.DecodeError
		switch {
		case errors.Is(err, thermal.ErrMissingData), errors.As(err, &decodeErr):
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("failed to process measurement: %v", err)
			s.writeJSONError(w, http.StatusInternalServerError, "failed to process measurement")
		}
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":       processed.ID,
		"analysis": processed.Result.Analysis,
		"files":    processed.Files,
	})
}

func (s *Server) showMeasurement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing 'id' parameter")
		return
	}

	m, err := s.db.GetMeasurement(id)
	if errors.Is(err, db.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "measurement not found")
		return
	}
	if err != nil {
		log.Printf("failed to get measurement %s: %v", id, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to get measurement")
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// serveGrayscale streams the rendered grayscale PNG for a measurement.
func (s *Server) serveGrayscale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing 'id' parameter")
		return
	}

	m, err := s.db.GetMeasurement(id)
	if errors.Is(err, db.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "measurement not found")
		return
	}
	if err != nil {
		log.Printf("failed to get measurement %s: %v", id, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to get measurement")
		return
	}
	if m.Files.GrayscalePNG == "" {
		s.writeJSONError(w, http.StatusNotFound, "measurement has no grayscale image")
		return
	}

	// Artifact paths come from the database; refuse anything that has
	// escaped the output directory.
	if err := security.ValidatePathWithinDirectory(m.Files.GrayscalePNG, s.processor.Writer.Dir); err != nil {
		log.Printf("refusing artifact path %q: %v", m.Files.GrayscalePNG, err)
		s.writeJSONError(w, http.StatusInternalServerError, "invalid artifact path")
		return
	}

	data, err := s.processor.Writer.FS.ReadFile(m.Files.GrayscalePNG)
	if err != nil {
		log.Printf("failed to read grayscale image %s: %v", m.Files.GrayscalePNG, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to read grayscale image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// temperatureChart renders a bar chart of min/mean/max temperature per
// recent measurement.
func (s *Server) temperatureChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	measurements, err := s.db.ListMeasurements(50)
	if err != nil {
		log.Printf("failed to list measurements for chart: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to list measurements")
		return
	}

	var names []string
	var minVals, meanVals, maxVals []opts.BarData
	// ListMeasurements returns newest first; charts read better oldest
	// to newest.
	for i := len(measurements) - 1; i >= 0; i-- {
		m := measurements[i]
		names = append(names, m.Metadata.MeasurementID)
		minVals = append(minVals, opts.BarData{Value: m.MinTemp})
		meanVals = append(meanVals, opts.BarData{Value: m.MeanTemp})
		maxVals = append(maxVals, opts.BarData{Value: m.MaxTemp})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Measurement Temperatures",
			Subtitle: "min / mean / max °C per measurement",
		}),
	)
	bar.SetXAxis(names).
		AddSeries("min", minVals).
		AddSeries("mean", meanVals).
		AddSeries("max", maxVals)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(w); err != nil {
		log.Printf("failed to render temperature chart: %v", err)
	}
}
