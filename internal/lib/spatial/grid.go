package spatial

import (
	"errors"
	"math"

	"github.com/strandlab/shoreline/internal/lib/geo"
	"github.com/strandlab/shoreline/internal/survey"
)

type cellKey struct {
	X int
	Y int
}

// GridIndex buckets points into uniform cells keyed by floor(coord/cellSize).
// A neighborhood query unions the cells around centers sampled along the
// line, so a point can only be missed if the cell radius covers less than the
// buffer distance plus the sampling spacing; the constructor widens the
// radius until that cannot happen.
type GridIndex struct {
	cells       map[cellKey][]survey.GeoPoint
	cellSizeDeg float64
	radiusCells int
	totalPoints int
}

// NewGridIndex partitions points into cells of cellSizeDeg degrees. The frame
// supplies the meters-per-degree scales used to guarantee that a neighborhood
// of radiusCells cells always covers bufferMeters.
func NewGridIndex(points []survey.GeoPoint, cellSizeDeg, bufferMeters float64, frame geo.Frame) (*GridIndex, error) {
	if cellSizeDeg <= 0 {
		return nil, errors.New("cell size must be positive")
	}
	if bufferMeters <= 0 {
		return nil, errors.New("buffer must be positive")
	}

	// The lon scale is the smaller of the two away from the equator, so a cell
	// spans the fewest meters in that direction.
	minMetersPerDegree := math.Min(frame.MetersPerDegreeLat, frame.MetersPerDegreeLon)
	cellMeters := cellSizeDeg * minMetersPerDegree

	// NearLine samples segments at cell resolution, so a buffered point's
	// nearest visited center can sit up to half a diagonal step away from its
	// nearest segment point. The radius must cover the buffer plus that
	// sampling error, plus one cell for the intra-cell offsets of the point
	// and the visited center.
	halfStepMeters := cellSizeDeg * math.Hypot(frame.MetersPerDegreeLat, frame.MetersPerDegreeLon) / 2
	radius := int(math.Floor((bufferMeters+halfStepMeters)/cellMeters)) + 1

	idx := &GridIndex{
		cells:       make(map[cellKey][]survey.GeoPoint),
		cellSizeDeg: cellSizeDeg,
		radiusCells: radius,
		totalPoints: len(points),
	}
	for _, p := range points {
		key := idx.keyFor(p.Longitude, p.Latitude)
		idx.cells[key] = append(idx.cells[key], p)
	}
	return idx, nil
}

func (g *GridIndex) keyFor(lon, lat float64) cellKey {
	return cellKey{
		X: int(math.Floor(lon / g.cellSizeDeg)),
		Y: int(math.Floor(lat / g.cellSizeDeg)),
	}
}

// NearLine unions the cell neighborhoods along every segment of the line.
// Segments are stepped at cell-size resolution so mid-segment cells are
// covered even when vertices are far apart, as on two-vertex monitoring
// lines. Cells are visited at most once, so points are not duplicated.
func (g *GridIndex) NearLine(line survey.ReferenceLine) []survey.GeoPoint {
	visited := make(map[cellKey]struct{})
	var candidates []survey.GeoPoint

	visit := func(lon, lat float64) {
		center := g.keyFor(lon, lat)
		for dx := -g.radiusCells; dx <= g.radiusCells; dx++ {
			for dy := -g.radiusCells; dy <= g.radiusCells; dy++ {
				key := cellKey{X: center.X + dx, Y: center.Y + dy}
				if _, seen := visited[key]; seen {
					continue
				}
				visited[key] = struct{}{}
				candidates = append(candidates, g.cells[key]...)
			}
		}
	}

	for i, v := range line.Vertices {
		visit(v.Longitude, v.Latitude)
		if i+1 >= len(line.Vertices) {
			continue
		}
		next := line.Vertices[i+1]
		span := math.Max(math.Abs(next.Longitude-v.Longitude), math.Abs(next.Latitude-v.Latitude))
		steps := int(math.Ceil(span / g.cellSizeDeg))
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			visit(v.Longitude+t*(next.Longitude-v.Longitude), v.Latitude+t*(next.Latitude-v.Latitude))
		}
	}
	return candidates
}

// Size reports the number of indexed points.
func (g *GridIndex) Size() int {
	return g.totalPoints
}

// RadiusCells exposes the neighborhood radius chosen to cover the buffer.
func (g *GridIndex) RadiusCells() int {
	return g.radiusCells
}
