// Package store persists pipeline output as JSON files and serves cached
// reads back to the HTTP layer. The batch side writes; the server side reads
// through a TTL cache so request handling never waits on disk for hot data.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"

	"github.com/strandlab/shoreline/internal/survey"
)

const (
	recordsFile  = "records.json"
	summaryFile  = "summary.json"
	linesFile    = "lines.json"
	manifestFile = "manifest.json"
)

// Manifest describes one pipeline run's output for consumers that need
// provenance without parsing the full record set.
type Manifest struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Fingerprint string         `json:"fingerprint"`
	RecordCount int            `json:"record_count"`
	PointCount  int            `json:"point_count"`
	LineCount   int            `json:"line_count"`
	Skipped     map[string]int `json:"skipped"`
	Duration    string         `json:"duration"`
}

// LineInfo is the geometry summary served by the lines endpoint. Vertices are
// carried as an encoded polyline rather than coordinate arrays.
type LineInfo struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	DefinitionDate  string  `json:"definition_date,omitempty"`
	EncodedPolyline string  `json:"encoded_polyline"`
	LengthMeters    float64 `json:"length_m"`
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// Store reads and writes the output directory. Reads go through an in-memory
// TTL cache; a zero TTL disables caching, which batch tooling uses.
type Store struct {
	dataDir string
	ttl     time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

// New returns a store over dataDir. ttl bounds how stale a cached read may be.
func New(dataDir string, ttl time.Duration) *Store {
	return &Store{
		dataDir: dataDir,
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// WriteRecords persists the record collection and returns its content
// fingerprint. Output is indented JSON with map keys in sorted order, so
// identical inputs produce bit-identical files.
func (s *Store) WriteRecords(records map[string]survey.TimeSeriesRecord) (string, error) {
	fingerprint, err := Fingerprint(records)
	if err != nil {
		return "", err
	}
	if err := s.writeJSON(recordsFile, records); err != nil {
		return "", err
	}
	return fingerprint, nil
}

// WriteSummary persists the per-date survey summary.
func (s *Store) WriteSummary(summary survey.Summary) error {
	return s.writeJSON(summaryFile, summary)
}

// WriteLines persists the reference-line geometry index.
func (s *Store) WriteLines(lineInfos []LineInfo) error {
	return s.writeJSON(linesFile, lineInfos)
}

// WriteManifest persists run provenance.
func (s *Store) WriteManifest(m Manifest) error {
	return s.writeJSON(manifestFile, m)
}

// Records loads the record collection, from cache when fresh.
func (s *Store) Records() (map[string]survey.TimeSeriesRecord, error) {
	var records map[string]survey.TimeSeriesRecord
	if err := s.readJSON(recordsFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Summary loads the survey summary, from cache when fresh.
func (s *Store) Summary() (survey.Summary, error) {
	var summary survey.Summary
	if err := s.readJSON(summaryFile, &summary); err != nil {
		return survey.Summary{}, err
	}
	return summary, nil
}

// Lines loads the reference-line index, from cache when fresh.
func (s *Store) Lines() ([]LineInfo, error) {
	var lineInfos []LineInfo
	if err := s.readJSON(linesFile, &lineInfos); err != nil {
		return nil, err
	}
	return lineInfos, nil
}

// Manifest loads run provenance, from cache when fresh.
func (s *Store) Manifest() (Manifest, error) {
	var m Manifest
	if err := s.readJSON(manifestFile, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Invalidate drops all cached entries; the next read hits disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*cacheEntry)
}

// StartPeriodicReload re-reads output files on an interval so a server keeps
// serving fresh data after the batch pipeline rewrites the directory.
func (s *Store) StartPeriodicReload(ctx context.Context, interval time.Duration) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack, _ := errors.ParseStack(debug.Stack())
				logging.Errorw(ctx, "Store reload: recovered from panic",
					"error", r, "error.stack_trace", stack.MinimalStack(3, 5))
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Invalidate()
				if _, err := s.Records(); err != nil {
					logging.Errorw(ctx, "Store reload: failed to reload records", "error", err)
				}
			}
		}
	}()
}

func (s *Store) writeJSON(name string, v interface{}) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(s.dataDir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
	return nil
}

func (s *Store) readJSON(name string, v interface{}) error {
	s.mu.RLock()
	entry, cached := s.entries[name]
	s.mu.RUnlock()

	if cached && time.Now().Before(entry.expiresAt) {
		if err := json.Unmarshal(entry.data, v); err != nil {
			return fmt.Errorf("failed to unmarshal cached %s: %w", name, err)
		}
		return nil
	}

	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}

	if s.ttl > 0 {
		s.mu.Lock()
		s.entries[name] = &cacheEntry{data: data, expiresAt: time.Now().Add(s.ttl)}
		s.mu.Unlock()
	}
	return nil
}
