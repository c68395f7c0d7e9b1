// Package services exposes the computed survey data over HTTP. Handlers are
// read-only views of the store; all computation happens in the batch pipeline.
package services

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/strandlab/shoreline/internal/store"
)

// ProfilesService serves reference-line geometry, time-series records, and
// survey summaries from the store.
type ProfilesService struct {
	store *store.Store
}

// NewProfilesService creates the service over a store.
func NewProfilesService(s *store.Store) *ProfilesService {
	return &ProfilesService{store: s}
}

// ListLines handles GET /api/v1/lines: the reference-line index with encoded
// polyline geometry.
func (s *ProfilesService) ListLines(w http.ResponseWriter, r *http.Request) {
	lineInfos, err := s.store.Lines()
	if err != nil {
		log.Printf("Failed to load line index: %v", err)
		writeError(w, http.StatusServiceUnavailable, "line index unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lines": lineInfos,
		"count": len(lineInfos),
	})
}

// GetRecord handles GET /api/v1/records/{line_id}: one line's time-series
// record.
func (s *ProfilesService) GetRecord(w http.ResponseWriter, r *http.Request) {
	lineID := strings.TrimPrefix(r.URL.Path, "/api/v1/records/")
	if lineID == "" || strings.Contains(lineID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	records, err := s.store.Records()
	if err != nil {
		log.Printf("Failed to load records: %v", err)
		writeError(w, http.StatusServiceUnavailable, "records unavailable")
		return
	}

	record, ok := records[lineID]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown line id")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// GetSummary handles GET /api/v1/summary: the per-date survey metadata.
func (s *ProfilesService) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary()
	if err != nil {
		log.Printf("Failed to load summary: %v", err)
		writeError(w, http.StatusServiceUnavailable, "summary unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetManifest handles GET /api/v1/manifest: run provenance for the data
// currently being served.
func (s *ProfilesService) GetManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.store.Manifest()
	if err != nil {
		log.Printf("Failed to load manifest: %v", err)
		writeError(w, http.StatusServiceUnavailable, "manifest unavailable")
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

// Health handles GET /healthz. The server is healthy when the store can
// produce a manifest.
func (s *ProfilesService) Health(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.store.Manifest()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"healthy": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"healthy": true,
		"run_id":  manifest.RunID,
		"records": manifest.RecordCount,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
