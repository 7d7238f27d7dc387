package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kestrel-data/thermal.report/internal/api"
	"github.com/kestrel-data/thermal.report/internal/artifacts"
	"github.com/kestrel-data/thermal.report/internal/config"
	"github.com/kestrel-data/thermal.report/internal/db"
	"github.com/kestrel-data/thermal.report/internal/ingest"
	"github.com/kestrel-data/thermal.report/internal/version"
	"github.com/kestrel-data/thermal.report/internal/watcher"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "measurements.db", "Path to the measurement database")
	outputDir  = flag.String("output", "", "Artifact output directory (overrides config)")
	inboxDir   = flag.String("inbox", "", "Watched inbox directory for measurement JSON files (overrides config)")
	configFile = flag.String("config", "", "Path to a processing config JSON file")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	log.Printf("thermal.report %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	cfg := config.EmptyProcessingConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadProcessingConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if *inboxDir != "" {
		cfg.InboxDir = inboxDir
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	writer := artifacts.NewWriter(nil, cfg.GetOutputDir())
	writer.HistogramBins = cfg.GetHistogramBins()
	processor := &ingest.Processor{Cfg: cfg, Writer: writer, DB: database}

	// Wait group for the HTTP server and inbox watcher routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// watch the inbox for downloaded measurement documents and run each
	// settled file through the pipeline
	if inbox := cfg.GetInboxDir(); inbox != "" {
		w := watcher.New(inbox)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("inbox watcher failed: %v", err)
			}
			log.Print("inbox watcher terminated")
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case path := <-w.Files():
					if _, err := processor.ProcessFile(path); err != nil {
						log.Printf("error processing %s: %v", path, err)
					}
				case <-ctx.Done():
					log.Printf("inbox processing routine terminated")
					return
				}
			}
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or over Tailscale)
		database.AttachAdminRoutes(mux)

		// mount the measurement API handlers
		mux.Handle("/api/", api.NewServer(database, processor).ServeMux())

		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"service":      "thermal.report",
				"version":      version.Version,
				"measurements": "/api/measurements",
				"charts":       "/api/charts/temperatures",
			})
		})

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
