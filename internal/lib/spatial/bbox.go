package spatial

import (
	"errors"
	"math"

	"github.com/strandlab/shoreline/internal/lib/geo"
	"github.com/strandlab/shoreline/internal/survey"
)

// BBoxFilter scans the flat point array against a margin-expanded bounding box
// of the queried line. Simpler than the grid and equivalent in accepted-point
// terms; preferable for small-to-medium point sets.
type BBoxFilter struct {
	points    []survey.GeoPoint
	marginDeg float64
}

// NewBBoxFilter wraps the point set with a margin wide enough that no point
// within bufferMeters of the line can fall outside the expanded box.
func NewBBoxFilter(points []survey.GeoPoint, bufferMeters float64, frame geo.Frame) (*BBoxFilter, error) {
	if bufferMeters <= 0 {
		return nil, errors.New("buffer must be positive")
	}
	minMetersPerDegree := math.Min(frame.MetersPerDegreeLat, frame.MetersPerDegreeLon)
	return &BBoxFilter{
		points:    points,
		marginDeg: bufferMeters / minMetersPerDegree,
	}, nil
}

// NearLine returns all points inside the line's bounding box expanded by the
// buffer margin.
func (b *BBoxFilter) NearLine(line survey.ReferenceLine) []survey.GeoPoint {
	bounds, ok := line.Bounds()
	if !ok {
		return nil
	}

	minLon := bounds.MinLon - b.marginDeg
	maxLon := bounds.MaxLon + b.marginDeg
	minLat := bounds.MinLat - b.marginDeg
	maxLat := bounds.MaxLat + b.marginDeg

	var candidates []survey.GeoPoint
	for _, p := range b.points {
		if p.Longitude < minLon || p.Longitude > maxLon {
			continue
		}
		if p.Latitude < minLat || p.Latitude > maxLat {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates
}

// Size reports the number of points behind the filter.
func (b *BBoxFilter) Size() int {
	return len(b.points)
}

// NewQuery picks a strategy for the point set: the grid index once point
// counts are large enough for its construction cost to pay off, the
// bounding-box filter otherwise. Callers depend only on the Query interface.
func NewQuery(points []survey.GeoPoint, cellSizeDeg, bufferMeters float64, frame geo.Frame) (Query, error) {
	if len(points) >= gridThresholdPoints {
		return NewGridIndex(points, cellSizeDeg, bufferMeters, frame)
	}
	return NewBBoxFilter(points, bufferMeters, frame)
}
