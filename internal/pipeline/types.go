// Package pipeline orchestrates the batch run: freeze inputs, select
// reference lines, project points over a worker pool, and collect the
// per-line time-series records.
package pipeline

import (
	"time"

	"github.com/strandlab/shoreline/internal/survey"
)

// SkipReason classifies why a reference line produced no record. Skips are
// expected outcomes, not errors; they are counted and reported, never failed.
type SkipReason string

const (
	SkipMalformedGeometry SkipReason = "malformed_geometry"
	SkipNoNearbyPoints    SkipReason = "no_nearby_points"
	SkipNoAcceptedPoints  SkipReason = "no_accepted_points"
	SkipSparseProfiles    SkipReason = "sparse_profiles"
	SkipLowDateCoverage   SkipReason = "low_date_coverage"
	SkipInternalError     SkipReason = "internal_error"
)

// Config carries the engine tuning for a run. Zero values for Workers and
// MaxReferenceLines mean GOMAXPROCS and no cap respectively.
type Config struct {
	BufferMeters        float64
	BinWidthMeters      float64
	MinBinsPerDate      int
	MinDateCoverage     int
	MinMOPDateCoverage  int
	GridCellSizeDegrees float64
	ReferenceLatitude   float64
	MaxReferenceLines   int
	Workers             int
}

// Result is everything a run produced: records keyed by line ID, skip
// accounting, and run metadata for the output manifest.
type Result struct {
	RunID          string                             `json:"run_id"`
	StartedAt      time.Time                          `json:"started_at"`
	Duration       time.Duration                      `json:"duration"`
	PointCount     int                                `json:"point_count"`
	LineCount      int                                `json:"line_count"`
	SelectedLines  int                                `json:"selected_lines"`
	ProcessedLines int                                `json:"processed_lines"`
	Records        map[string]survey.TimeSeriesRecord `json:"records"`
	Skipped        map[string]SkipReason              `json:"skipped"`
}

// SkipCounts aggregates Skipped into per-reason totals.
func (r *Result) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, reason := range r.Skipped {
		counts[reason]++
	}
	return counts
}
