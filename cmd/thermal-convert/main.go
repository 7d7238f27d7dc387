// Command thermal-convert runs downloaded measurement JSON documents
// through the conversion pipeline offline and writes the artifacts to
// an output directory. Arguments are measurement files or directories
// of them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kestrel-data/thermal.report/internal/artifacts"
	"github.com/kestrel-data/thermal.report/internal/config"
	"github.com/kestrel-data/thermal.report/internal/ingest"
)

func main() {
	output := flag.String("output", "", "artifact output directory (overrides config)")
	configFile := flag.String("config", "", "path to a processing config JSON file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <measurement.json|dir> ...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.EmptyProcessingConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadProcessingConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *output != "" {
		cfg.OutputDir = output
	}

	writer := artifacts.NewWriter(nil, cfg.GetOutputDir())
	writer.HistogramBins = cfg.GetHistogramBins()
	processor := &ingest.Processor{Cfg: cfg, Writer: writer}

	failed := false
	for _, path := range flag.Args() {
		processed, err := processor.ProcessPath(path)
		if err != nil {
			log.Printf("failed to process %s: %v", path, err)
			failed = true
			continue
		}
		for _, p := range processed {
			printSummary(p)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func printSummary(p *ingest.Processed) {
	res := p.Result
	a := res.Analysis

	fmt.Printf("%s\n", res.Identifier)
	fmt.Printf("  measurement: %s  unit: %s  sensor: %s\n",
		res.Metadata.MeasurementID, res.Metadata.Unit, res.Metadata.SensorID)
	fmt.Printf("  frame: %dx%d (%s)  raw: %d..%d\n",
		res.Raw.Width, res.Raw.Height, res.Raw.Fit, res.Raw.Min(), res.Raw.Max())
	fmt.Printf("  temperature: mean %.2f°C  std %.2f  min %.2f  max %.2f  median %.2f\n",
		a.Mean, a.Std, a.Min, a.Max, a.Median)
	fmt.Printf("  hotspots >%.1f°C: %d pixels (%.2f%%)\n",
		a.Hotspots.Threshold, a.Hotspots.Count, a.Hotspots.Percentage)
	fmt.Printf("  artifacts: %s\n", p.Files.MetadataJSON)
}
