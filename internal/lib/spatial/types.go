package spatial

import (
	"github.com/strandlab/shoreline/internal/survey"
)

// Query finds candidate survey points near a reference line. Implementations
// return a superset of the points that will pass the projection buffer; the
// projector applies the exact perpendicular-distance test. Queries are
// read-only after construction and safe for concurrent use.
type Query interface {
	// NearLine returns candidate points in the neighborhood of the line.
	NearLine(line survey.ReferenceLine) []survey.GeoPoint

	// Size reports the number of indexed points.
	Size() int
}

// gridThresholdPoints is the point count above which the grid index amortizes
// better than a per-line bounding-box scan.
const gridThresholdPoints = 100_000
