// Command gen-measurement generates a synthetic measurement JSON
// document: a vertical thermal gradient with a few injected hotspots,
// base64-encoded the way the inspection API delivers frames.
package main

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-data/thermal.report/internal/thermal"
)

func main() {
	outDir := flag.String("o", ".", "output directory")
	width := flag.Int("width", thermal.DefaultWidth, "frame width in pixels")
	height := flag.Int("height", thermal.DefaultHeight, "frame height in pixels")
	hotspots := flag.Int("hotspots", 3, "number of injected hotspots")
	unit := flag.String("unit", "UNIT_01", "unit segment of the identifier")
	sensorID := flag.String("sensor", "1T001", "sensor id segment of the identifier")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	// Gradient from ~10°C at the top to ~25°C at the bottom under the
	// default calibration, plus noise.
	samples := make([]uint16, *width**height)
	for y := 0; y < *height; y++ {
		rowTemp := 10.0 + 15.0*float64(y)/float64(*height)
		for x := 0; x < *width; x++ {
			temp := rowTemp + rng.Float64()
			samples[y**width+x] = rawForTemperature(temp)
		}
	}

	// Hotspots well above the default threshold.
	for i := 0; i < *hotspots; i++ {
		cx := rng.Intn(*width)
		cy := rng.Intn(*height)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				x, y := cx+dx, cy+dy
				if x < 0 || x >= *width || y < 0 || y >= *height {
					continue
				}
				samples[y**width+x] = rawForTemperature(45.0 + 10.0*rng.Float64())
			}
		}
	}

	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], s)
	}

	doc := map[string]any{
		"data":   base64.StdEncoding.EncodeToString(buf),
		"width":  *width,
		"height": *height,
		"gain":   thermal.DefaultGain,
		"offset": thermal.DefaultOffset,
	}

	name := fmt.Sprintf("%s_%s_THERMAL_%s_measurement.json", uuid.NewString(), *unit, *sensorID)
	path := filepath.Join(*outDir, name)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal document: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("failed to write %s: %v", path, err)
	}
	log.Printf("✓ Created: %s (%dx%d, %d hotspots)", path, *width, *height, *hotspots)
}

// rawForTemperature inverts the default linear calibration.
func rawForTemperature(temp float64) uint16 {
	raw := (temp - thermal.DefaultOffset) / thermal.DefaultGain
	if raw < 0 {
		return 0
	}
	if raw > 65535 {
		return 65535
	}
	return uint16(raw)
}
