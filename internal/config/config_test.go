package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyProcessingConfig()

	if cfg.GetSensorWidth() != 336 {
		t.Errorf("GetSensorWidth() = %d, want 336", cfg.GetSensorWidth())
	}
	if cfg.GetSensorHeight() != 256 {
		t.Errorf("GetSensorHeight() = %d, want 256", cfg.GetSensorHeight())
	}
	if cfg.GetGain() != 0.04 {
		t.Errorf("GetGain() = %f, want 0.04", cfg.GetGain())
	}
	if cfg.GetOffset() != -273.15 {
		t.Errorf("GetOffset() = %f, want -273.15", cfg.GetOffset())
	}
	if cfg.GetHotspotThreshold() != 30.0 {
		t.Errorf("GetHotspotThreshold() = %f, want 30.0", cfg.GetHotspotThreshold())
	}
	if cfg.GetHistogramBins() != 40 {
		t.Errorf("GetHistogramBins() = %d, want 40", cfg.GetHistogramBins())
	}
	if cfg.GetOutputDir() != "thermal_output" {
		t.Errorf("GetOutputDir() = %q, want thermal_output", cfg.GetOutputDir())
	}
	if cfg.GetInboxDir() != "" {
		t.Errorf("GetInboxDir() = %q, want empty", cfg.GetInboxDir())
	}
}

func TestLoadProcessingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "processing.json")

	testJSON := `{
  "sensor_width": 640,
  "sensor_height": 480,
  "gain": 0.01,
  "offset": 0,
  "hotspot_threshold": 45.5,
  "output_dir": "converted"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadProcessingConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetSensorWidth() != 640 {
		t.Errorf("GetSensorWidth() = %d, want 640", cfg.GetSensorWidth())
	}
	if cfg.GetSensorHeight() != 480 {
		t.Errorf("GetSensorHeight() = %d, want 480", cfg.GetSensorHeight())
	}
	if cfg.GetGain() != 0.01 {
		t.Errorf("GetGain() = %f, want 0.01", cfg.GetGain())
	}
	// An explicit zero offset must not fall back to the default.
	if cfg.GetOffset() != 0 {
		t.Errorf("GetOffset() = %f, want 0", cfg.GetOffset())
	}
	if cfg.GetHotspotThreshold() != 45.5 {
		t.Errorf("GetHotspotThreshold() = %f, want 45.5", cfg.GetHotspotThreshold())
	}
	if cfg.GetOutputDir() != "converted" {
		t.Errorf("GetOutputDir() = %q, want converted", cfg.GetOutputDir())
	}
	// Unset fields keep their defaults.
	if cfg.GetHistogramBins() != 40 {
		t.Errorf("GetHistogramBins() = %d, want 40", cfg.GetHistogramBins())
	}
}

func TestLoadProcessingConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		os.WriteFile(path, []byte("{}"), 0644)
		if _, err := LoadProcessingConfig(path); err == nil {
			t.Error("expected error for non-json extension")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadProcessingConfig(filepath.Join(tmpDir, "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.json")
		os.WriteFile(path, []byte("{not json"), 0644)
		if _, err := LoadProcessingConfig(path); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(tmpDir, "neg.json")
		os.WriteFile(path, []byte(`{"sensor_width": -1}`), 0644)
		if _, err := LoadProcessingConfig(path); err == nil {
			t.Error("expected error for negative sensor_width")
		}
	})
}
