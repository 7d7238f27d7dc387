// Package config loads processing parameters for the thermal pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrel-data/thermal.report/internal/thermal"
)

// ProcessingConfig is the root configuration for the thermal pipeline.
// All fields are optional pointers so a partial JSON file only
// overrides what it names; the Get* accessors supply defaults for the
// rest. The same schema is accepted at startup and by the API's
// processing endpoint.
type ProcessingConfig struct {
	// Sensor geometry and radiometric calibration defaults, applied to
	// records that omit the corresponding field.
	SensorWidth  *int     `json:"sensor_width,omitempty"`
	SensorHeight *int     `json:"sensor_height,omitempty"`
	Gain         *float64 `json:"gain,omitempty"`
	Offset       *float64 `json:"offset,omitempty"`

	// Analysis params
	HotspotThreshold *float64 `json:"hotspot_threshold,omitempty"`
	HistogramBins    *int     `json:"histogram_bins,omitempty"`

	// Artifact params
	OutputDir *string `json:"output_dir,omitempty"`
	InboxDir  *string `json:"inbox_dir,omitempty"`
}

// EmptyProcessingConfig returns a ProcessingConfig with all fields nil.
func EmptyProcessingConfig() *ProcessingConfig {
	return &ProcessingConfig{}
}

// LoadProcessingConfig loads a ProcessingConfig from a JSON file.
// The file must have a .json extension and stay under the max file
// size. Fields omitted from the JSON file keep their defaults, so
// partial configs are safe.
func LoadProcessingConfig(path string) (*ProcessingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyProcessingConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *ProcessingConfig) Validate() error {
	if c.SensorWidth != nil && *c.SensorWidth <= 0 {
		return fmt.Errorf("sensor_width must be positive, got %d", *c.SensorWidth)
	}
	if c.SensorHeight != nil && *c.SensorHeight <= 0 {
		return fmt.Errorf("sensor_height must be positive, got %d", *c.SensorHeight)
	}
	if c.HistogramBins != nil && *c.HistogramBins < 2 {
		return fmt.Errorf("histogram_bins must be at least 2, got %d", *c.HistogramBins)
	}
	return nil
}

// GetSensorWidth returns the sensor_width value or the default.
func (c *ProcessingConfig) GetSensorWidth() int {
	if c.SensorWidth == nil {
		return thermal.DefaultWidth
	}
	return *c.SensorWidth
}

// GetSensorHeight returns the sensor_height value or the default.
func (c *ProcessingConfig) GetSensorHeight() int {
	if c.SensorHeight == nil {
		return thermal.DefaultHeight
	}
	return *c.SensorHeight
}

// GetGain returns the gain value or the default.
func (c *ProcessingConfig) GetGain() float64 {
	if c.Gain == nil {
		return thermal.DefaultGain
	}
	return *c.Gain
}

// GetOffset returns the offset value or the default.
func (c *ProcessingConfig) GetOffset() float64 {
	if c.Offset == nil {
		return thermal.DefaultOffset
	}
	return *c.Offset
}

// GetHotspotThreshold returns the hotspot_threshold value or the default.
func (c *ProcessingConfig) GetHotspotThreshold() float64 {
	if c.HotspotThreshold == nil {
		return thermal.DefaultHotspotThreshold
	}
	return *c.HotspotThreshold
}

// GetHistogramBins returns the histogram_bins value or the default.
func (c *ProcessingConfig) GetHistogramBins() int {
	if c.HistogramBins == nil {
		return 40
	}
	return *c.HistogramBins
}

// GetOutputDir returns the output_dir value or the default.
func (c *ProcessingConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "thermal_output"
	}
	return *c.OutputDir
}

// GetInboxDir returns the inbox_dir value, or empty when the watched
// inbox is disabled.
func (c *ProcessingConfig) GetInboxDir() string {
	if c.InboxDir == nil {
		return ""
	}
	return *c.InboxDir
}
