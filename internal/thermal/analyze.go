package thermal

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Analysis summarizes a temperature frame. It is derived on demand and
// never cached; an all-zero or empty frame still yields valid
// (degenerate) statistics.
type Analysis struct {
	Mean   float64 `json:"mean_temp"`
	Std    float64 `json:"std_temp"`
	Min    float64 `json:"min_temp"`
	Max    float64 `json:"max_temp"`
	Median float64 `json:"median_temp"`

	Hotspots Hotspots `json:"hotspots"`
}

// Hotspots describes the cells strictly above the analysis threshold.
// Rows and Cols are parallel coordinate slices so callers can annotate
// individual pixels downstream.
type Hotspots struct {
	Threshold  float64 `json:"threshold"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Rows       []int   `json:"rows"`
	Cols       []int   `json:"cols"`
}

// Analyze computes full-frame statistics (no masking) and hotspot
// coordinates for the given threshold. The standard deviation is the
// population standard deviation; the median averages the two middle
// values for even cell counts.
func Analyze(frame *TemperatureFrame, threshold float64) Analysis {
	n := len(frame.Pix)
	if n == 0 {
		return Analysis{Hotspots: Hotspots{Threshold: threshold}}
	}

	vals := make([]float64, n)
	for i, v := range frame.Pix {
		vals[i] = float64(v)
	}

	mean := stat.Mean(vals, nil)
	std := stat.PopStdDev(vals, nil)

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	hs := Hotspots{Threshold: threshold}
	for i, v := range vals {
		if v > threshold {
			hs.Rows = append(hs.Rows, i/frame.Width)
			hs.Cols = append(hs.Cols, i%frame.Width)
		}
	}
	hs.Count = len(hs.Rows)
	hs.Percentage = float64(hs.Count) / float64(n) * 100

	return Analysis{
		Mean:     mean,
		Std:      std,
		Min:      sorted[0],
		Max:      sorted[n-1],
		Median:   median,
		Hotspots: hs,
	}
}
