// Package projection projects survey points onto reference polylines and
// applies the inclusion buffer that decides whether a point belongs to a line.
package projection

import (
	"math"

	"github.com/strandlab/shoreline/internal/lib/geo"
	"github.com/strandlab/shoreline/internal/survey"
)

// degenerateLineLengthMeters is the total length below which a line is
// treated as having no usable geometry (about a millimeter).
const degenerateLineLengthMeters = 1e-3

// Projector walks a reference line's segments and finds each candidate
// point's minimum perpendicular distance and the matching cumulative
// along-line distance. Immutable after construction; safe for concurrent use.
type Projector struct {
	frame        geo.Frame
	bufferMeters float64
}

// NewProjector builds a projector over the given planar frame. Points farther
// than bufferMeters from every segment of a line are rejected.
func NewProjector(frame geo.Frame, bufferMeters float64) *Projector {
	return &Projector{frame: frame, bufferMeters: bufferMeters}
}

// BufferMeters reports the configured inclusion buffer.
func (p *Projector) BufferMeters() float64 {
	return p.bufferMeters
}

// Project projects one point onto the line. The second return is false when
// the point is outside the buffer or the line has no usable geometry.
//
// The minimum distance is tracked across all segments with a strict
// comparison, so a point exactly equidistant from two segments takes its
// along-line position from the first segment encountered. Cumulative distance
// uses great-circle segment lengths, not the planar approximation.
func (p *Projector) Project(point survey.GeoPoint, line survey.ReferenceLine) (survey.Projection, bool) {
	if len(line.Vertices) < 2 {
		return survey.Projection{}, false
	}

	loc := geo.Point{Latitude: point.Latitude, Longitude: point.Longitude}

	minDist := math.Inf(1)
	bestAlong := 0.0
	cumulative := 0.0

	for i := 0; i+1 < len(line.Vertices); i++ {
		a := line.Vertices[i]
		b := line.Vertices[i+1]

		seg := p.frame.PointToSegment(loc, a, b)
		if seg.DistanceMeters < minDist {
			minDist = seg.DistanceMeters
			bestAlong = cumulative + seg.AlongMeters
		}

		cumulative += geo.Haversine(a, b)
	}

	// A line whose segments are all degenerate has no direction to project
	// onto; it never accepts points.
	if cumulative < degenerateLineLengthMeters {
		return survey.Projection{}, false
	}

	if minDist > p.bufferMeters {
		return survey.Projection{}, false
	}

	return survey.Projection{
		PerpDistanceMeters: minDist,
		AlongLineMeters:    bestAlong,
		Elevation:          point.Elevation,
		SurveyDate:         point.SurveyDate,
	}, true
}

// ProjectAll projects a batch of candidates and returns the accepted
// projections in input order.
func (p *Projector) ProjectAll(points []survey.GeoPoint, line survey.ReferenceLine) []survey.Projection {
	var accepted []survey.Projection
	for _, pt := range points {
		if proj, ok := p.Project(pt, line); ok {
			accepted = append(accepted, proj)
		}
	}
	return accepted
}
