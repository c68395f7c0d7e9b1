// Package profile reduces accepted projections into per-date binned
// elevation profiles that are directly comparable across survey dates.
package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/strandlab/shoreline/internal/survey"
)

// Aggregator groups projections by survey date and reduces each date's point
// cloud to a fixed-width binned distance/elevation curve. Fixed-width binning
// is used rather than proximity merging so results do not depend on input
// ordering artifacts.
type Aggregator struct {
	binWidthMeters float64
	minBinsPerDate int
}

// NewAggregator configures binning. binWidthMeters is the bin interval along
// the line; dates with fewer than minBinsPerDate non-empty bins are dropped,
// since sparse coverage cannot support profile comparison.
func NewAggregator(binWidthMeters float64, minBinsPerDate int) *Aggregator {
	return &Aggregator{
		binWidthMeters: binWidthMeters,
		minBinsPerDate: minBinsPerDate,
	}
}

type binAccum struct {
	distances  []float64
	elevations []float64
}

// Aggregate bins the accepted projections per survey date. lineLengthMeters
// caps the bin range; when non-positive, the maximum observed distance is
// used instead. Bin records carry round(mean distance, 2) and round(mean
// elevation, 3) so emitted data is stable across runs.
func (a *Aggregator) Aggregate(projections []survey.Projection, lineLengthMeters float64) map[string]survey.DateProfile {
	byDate := make(map[string][]survey.Projection)
	for _, p := range projections {
		byDate[p.SurveyDate] = append(byDate[p.SurveyDate], p)
	}

	profiles := make(map[string]survey.DateProfile)
	for date, datePoints := range byDate {
		prof, ok := a.aggregateDate(date, datePoints, lineLengthMeters)
		if ok {
			profiles[date] = prof
		}
	}
	return profiles
}

func (a *Aggregator) aggregateDate(date string, points []survey.Projection, lineLengthMeters float64) (survey.DateProfile, bool) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].AlongLineMeters < points[j].AlongLineMeters
	})

	maxDistance := lineLengthMeters
	if maxDistance <= 0 && len(points) > 0 {
		maxDistance = points[len(points)-1].AlongLineMeters
	}

	bins := make(map[int]*binAccum)
	var order []int
	for _, p := range points {
		if p.AlongLineMeters < 0 || p.AlongLineMeters > maxDistance+a.binWidthMeters {
			continue
		}
		idx := int(math.Floor(p.AlongLineMeters / a.binWidthMeters))
		acc, exists := bins[idx]
		if !exists {
			acc = &binAccum{}
			bins[idx] = acc
			order = append(order, idx)
		}
		acc.distances = append(acc.distances, p.AlongLineMeters)
		acc.elevations = append(acc.elevations, p.Elevation)
	}
	sort.Ints(order)

	// Rounding can collapse the gap between adjacent bins; fold such a bin
	// into its predecessor so distances stay strictly increasing.
	var merged []*binAccum
	for _, idx := range order {
		acc := bins[idx]
		if len(merged) > 0 {
			last := merged[len(merged)-1]
			lastDist := survey.RoundTo(stat.Mean(last.distances, nil), 2)
			if survey.RoundTo(stat.Mean(acc.distances, nil), 2) <= lastDist {
				last.distances = append(last.distances, acc.distances...)
				last.elevations = append(last.elevations, acc.elevations...)
				continue
			}
		}
		merged = append(merged, acc)
	}

	prof := survey.DateProfile{SurveyDate: date}
	for _, acc := range merged {
		prof.Distances = append(prof.Distances, survey.RoundTo(stat.Mean(acc.distances, nil), 2))
		prof.Elevations = append(prof.Elevations, survey.RoundTo(stat.Mean(acc.elevations, nil), 3))
	}

	prof.PointCount = len(prof.Distances)
	if prof.PointCount < a.minBinsPerDate {
		return survey.DateProfile{}, false
	}
	return prof, true
}
