// Command server serves computed survey profiles over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/dpup/prefab"

	"github.com/strandlab/shoreline/internal/config"
	"github.com/strandlab/shoreline/internal/services"
	"github.com/strandlab/shoreline/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dataStore := store.New(cfg.Server.DataDir, cfg.Server.ReloadInterval)
	profilesService := services.NewProfilesService(dataStore)

	log.Printf("Survey profile server starting")
	log.Printf("Data directory: %s", cfg.Server.DataDir)

	if manifest, err := dataStore.Manifest(); err != nil {
		log.Printf("No run manifest yet; serving will return 503 until data arrives: %v", err)
	} else {
		log.Printf("Serving run %s: %d records", manifest.RunID, manifest.RecordCount)
	}

	// Keep cached reads fresh as the batch pipeline rewrites the directory.
	if cfg.Server.ReloadInterval > 0 {
		dataStore.StartPeriodicReload(context.Background(), cfg.Server.ReloadInterval)
	}

	server := prefab.New(
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
		prefab.WithHTTPHandlerFunc("/healthz", profilesService.Health),
		prefab.WithHTTPHandlerFunc("/api/v1/lines", profilesService.ListLines),
		prefab.WithHTTPHandlerFunc("/api/v1/records/", profilesService.GetRecord),
		prefab.WithHTTPHandlerFunc("/api/v1/summary", profilesService.GetSummary),
		prefab.WithHTTPHandlerFunc("/api/v1/manifest", profilesService.GetManifest),
	)

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// homepageHandler serves a plain-text index at the server root.
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	text := `shoreline survey API

Read-only access to processed beach survey profiles.

Endpoints:
  GET /api/v1/lines           - Reference lines with encoded geometry
  GET /api/v1/records/{id}    - Time-series record for one line
  GET /api/v1/summary         - Per-date survey metadata
  GET /api/v1/manifest        - Provenance of the data being served
  GET /healthz                - Health check
`

	if _, err := fmt.Fprint(w, text); err != nil {
		slog.Error("Failed to write homepage", "error", err)
	}
}
