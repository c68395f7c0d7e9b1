package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
	"github.com/google/uuid"

	"github.com/strandlab/shoreline/internal/lib/geo"
	"github.com/strandlab/shoreline/internal/lib/profile"
	"github.com/strandlab/shoreline/internal/lib/projection"
	"github.com/strandlab/shoreline/internal/lib/spatial"
	"github.com/strandlab/shoreline/internal/survey"
)

// Orchestrator runs the projection pipeline over a point set and a collection
// of reference lines. Construction validates the engine config; Run may be
// called repeatedly with different inputs.
type Orchestrator struct {
	cfg        Config
	frame      geo.Frame
	projector  *projection.Projector
	aggregator *profile.Aggregator
}

// New validates cfg and builds the shared planar frame, projector, and
// aggregator used by every worker.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.BufferMeters <= 0 {
		return nil, fmt.Errorf("buffer must be positive, got %v", cfg.BufferMeters)
	}
	if cfg.BinWidthMeters <= 0 {
		return nil, fmt.Errorf("bin width must be positive, got %v", cfg.BinWidthMeters)
	}
	if cfg.MinBinsPerDate < 1 {
		return nil, fmt.Errorf("min bins per date must be at least 1, got %d", cfg.MinBinsPerDate)
	}
	frame, err := geo.NewFrame(cfg.ReferenceLatitude)
	if err != nil {
		return nil, fmt.Errorf("invalid reference latitude: %w", err)
	}
	return &Orchestrator{
		cfg:        cfg,
		frame:      frame,
		projector:  projection.NewProjector(frame, cfg.BufferMeters),
		aggregator: profile.NewAggregator(cfg.BinWidthMeters, cfg.MinBinsPerDate),
	}, nil
}

type lineOutcome struct {
	lineID string
	record survey.TimeSeriesRecord
	skip   SkipReason
	ok     bool
}

// Run executes the pipeline. Points and lines are frozen (copied) before any
// worker starts, so callers may mutate their slices afterwards. Workers only
// read shared state and send their outcomes over a channel; all map writes
// happen on the collecting side.
func (o *Orchestrator) Run(ctx context.Context, points []survey.GeoPoint, refLines []survey.ReferenceLine) (*Result, error) {
	started := time.Now()

	frozenPoints := append([]survey.GeoPoint(nil), points...)
	selected := SelectLines(refLines, o.cfg.MaxReferenceLines)

	query, err := spatial.NewQuery(frozenPoints, o.cfg.GridCellSizeDegrees, o.cfg.BufferMeters, o.frame)
	if err != nil {
		return nil, fmt.Errorf("failed to build spatial query: %w", err)
	}

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(selected) && len(selected) > 0 {
		workers = len(selected)
	}

	logging.Infow(ctx, "Pipeline run starting",
		"points", len(frozenPoints), "lines", len(refLines),
		"selected", len(selected), "workers", workers)

	jobs := make(chan survey.ReferenceLine)
	outcomes := make(chan lineOutcome, len(selected))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range jobs {
				outcomes <- o.safeProcessLine(ctx, query, line)
			}
		}()
	}

	dispatchErr := func() error {
		defer close(jobs)
		for _, line := range selected {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- line:
			}
		}
		return nil
	}()

	wg.Wait()
	close(outcomes)

	result := &Result{
		RunID:         uuid.NewString(),
		StartedAt:     started,
		PointCount:    len(frozenPoints),
		LineCount:     len(refLines),
		SelectedLines: len(selected),
		Records:       make(map[string]survey.TimeSeriesRecord),
		Skipped:       make(map[string]SkipReason),
	}
	for outcome := range outcomes {
		result.ProcessedLines++
		if outcome.ok {
			result.Records[outcome.lineID] = outcome.record
		} else {
			result.Skipped[outcome.lineID] = outcome.skip
		}
	}
	result.Duration = time.Since(started)

	if dispatchErr != nil {
		return result, dispatchErr
	}

	logging.Infow(ctx, "Pipeline run complete",
		"run_id", result.RunID, "records", len(result.Records),
		"skipped", len(result.Skipped), "duration", result.Duration)
	return result, nil
}

// safeProcessLine wraps processLine with per-line panic recovery so a bad
// line skips itself instead of killing its worker. The worker keeps draining
// jobs, and every dispatched line still lands in Records or Skipped.
func (o *Orchestrator) safeProcessLine(ctx context.Context, query spatial.Query, line survey.ReferenceLine) (outcome lineOutcome) {
	defer func() {
		if r := recover(); r != nil {
			stack, _ := errors.ParseStack(debug.Stack())
			logging.Errorw(ctx, "Pipeline worker: recovered from panic",
				"line_id", line.ID, "error", r, "error.stack_trace", stack.MinimalStack(3, 5))
			outcome = lineOutcome{lineID: line.ID, skip: SkipInternalError}
		}
	}()
	return o.processLine(query, line)
}

// processLine produces one line's record, or the skip reason for why it has
// none. Everything it touches is read-only shared state or its own locals.
func (o *Orchestrator) processLine(query spatial.Query, line survey.ReferenceLine) lineOutcome {
	if len(line.Vertices) < 2 {
		return lineOutcome{lineID: line.ID, skip: SkipMalformedGeometry}
	}

	candidates := query.NearLine(line)
	if len(candidates) == 0 {
		return lineOutcome{lineID: line.ID, skip: SkipNoNearbyPoints}
	}

	accepted := o.projector.ProjectAll(candidates, line)
	if len(accepted) == 0 {
		return lineOutcome{lineID: line.ID, skip: SkipNoAcceptedPoints}
	}

	profiles := o.aggregator.Aggregate(accepted, line.LengthMeters())
	if len(profiles) == 0 {
		return lineOutcome{lineID: line.ID, skip: SkipSparseProfiles}
	}

	minCoverage := o.cfg.MinDateCoverage
	if line.Kind == survey.LineKindMOP {
		minCoverage = o.cfg.MinMOPDateCoverage
	}
	if len(profiles) < minCoverage {
		return lineOutcome{lineID: line.ID, skip: SkipLowDateCoverage}
	}

	dates := make([]string, 0, len(profiles))
	for date := range profiles {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	return lineOutcome{
		lineID: line.ID,
		record: survey.TimeSeriesRecord{
			LineID:    line.ID,
			Kind:      line.Kind,
			BaseDate:  dates[0],
			Profiles:  profiles,
			DateCount: len(profiles),
		},
		ok: true,
	}
}

// SelectLines caps the line set deterministically. Lines are grouped by
// definition date; each group is sorted by ID and contributes a share of the
// cap proportional to its size, taken at even spacing so the picks cover the
// group's extent rather than its head. A non-positive cap selects everything.
func SelectLines(refLines []survey.ReferenceLine, maxLines int) []survey.ReferenceLine {
	if maxLines <= 0 || len(refLines) <= maxLines {
		out := append([]survey.ReferenceLine(nil), refLines...)
		sort.Slice(out, func(i, j int) bool {
			if out[i].DefinitionDate != out[j].DefinitionDate {
				return out[i].DefinitionDate < out[j].DefinitionDate
			}
			return out[i].ID < out[j].ID
		})
		return out
	}

	groups := make(map[string][]survey.ReferenceLine)
	var dates []string
	for _, line := range refLines {
		if _, seen := groups[line.DefinitionDate]; !seen {
			dates = append(dates, line.DefinitionDate)
		}
		groups[line.DefinitionDate] = append(groups[line.DefinitionDate], line)
	}
	sort.Strings(dates)

	var selected []survey.ReferenceLine
	remaining := maxLines
	remainingLines := len(refLines)
	for _, date := range dates {
		group := groups[date]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		// Proportional share of the remaining budget, at least one while
		// budget lasts.
		quota := remaining * len(group) / remainingLines
		if quota < 1 {
			quota = 1
		}
		if quota > remaining {
			quota = remaining
		}
		if quota > len(group) {
			quota = len(group)
		}

		for i := 0; i < quota; i++ {
			idx := i * len(group) / quota
			selected = append(selected, group[idx])
		}

		remaining -= quota
		remainingLines -= len(group)
		if remaining == 0 {
			break
		}
	}
	return selected
}
