package survey

import (
	"github.com/strandlab/shoreline/internal/lib/geo"
)

// Quality is the RTK solution quality flag carried on every GPS point. Values
// follow the receiver convention: 1 = RTK fix, 2 = float, 5 = single.
type Quality int

const (
	QualityFix    Quality = 1
	QualityFloat  Quality = 2
	QualitySingle Quality = 5
)

// String returns the lowercase label used in emitted summaries.
func (q Quality) String() string {
	switch q {
	case QualityFix:
		return "fix"
	case QualityFloat:
		return "float"
	case QualitySingle:
		return "single"
	default:
		return "unknown"
	}
}

// GeoPoint is a single surveyed GPS point. Points arrive already validated
// from the upstream receiver-log parser and are never mutated by the engine.
type GeoPoint struct {
	Longitude  float64 `json:"lon"`
	Latitude   float64 `json:"lat"`
	Elevation  float64 `json:"elevation"`
	Quality    Quality `json:"quality"`
	SurveyDate string  `json:"survey_date"` // YYYY-MM-DD
}

// LineKind distinguishes field-walked transects from standardized MOP
// monitoring lines. Both are projected identically; only the minimum
// date-coverage policy differs.
type LineKind string

const (
	LineKindTransect LineKind = "transect"
	LineKindMOP      LineKind = "mop"
)

// ReferenceLine is a fixed polyline that scattered survey points are compared
// against across time. Vertices are ordered from the line's start.
type ReferenceLine struct {
	ID             string      `json:"id"`
	Kind           LineKind    `json:"kind"`
	DefinitionDate string      `json:"survey_date"` // YYYY-MM-DD the line was defined
	Vertices       []geo.Point `json:"vertices"`
}

// LengthMeters sums great-circle segment lengths over the line's vertices.
func (l ReferenceLine) LengthMeters() float64 {
	total := 0.0
	for i := 0; i+1 < len(l.Vertices); i++ {
		total += geo.Haversine(l.Vertices[i], l.Vertices[i+1])
	}
	return total
}

// Bounds returns the line's geographic bounding box. The second return is
// false for a line with no vertices.
func (l ReferenceLine) Bounds() (Bounds, bool) {
	if len(l.Vertices) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinLat: l.Vertices[0].Latitude,
		MaxLat: l.Vertices[0].Latitude,
		MinLon: l.Vertices[0].Longitude,
		MaxLon: l.Vertices[0].Longitude,
	}
	for _, v := range l.Vertices[1:] {
		b.extend(v.Longitude, v.Latitude)
	}
	return b, true
}

// Bounds is a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

func (b *Bounds) extend(lon, lat float64) {
	if lat < b.MinLat {
		b.MinLat = lat
	}
	if lat > b.MaxLat {
		b.MaxLat = lat
	}
	if lon < b.MinLon {
		b.MinLon = lon
	}
	if lon > b.MaxLon {
		b.MaxLon = lon
	}
}

// Projection is a transient per-point result of projecting an accepted
// candidate onto a reference line.
type Projection struct {
	PerpDistanceMeters float64 `json:"perp_distance_m"`
	AlongLineMeters    float64 `json:"along_line_distance_m"`
	Elevation          float64 `json:"elevation"`
	SurveyDate         string  `json:"survey_date"`
}

// DateProfile is one survey date's binned elevation profile along a line.
// Distances are strictly increasing and always paired with elevations.
type DateProfile struct {
	SurveyDate string    `json:"survey_date"`
	Distances  []float64 `json:"distances"`
	Elevations []float64 `json:"elevations"`
	PointCount int       `json:"point_count"`
}

// TimeSeriesRecord collects every qualifying date's profile for one line.
type TimeSeriesRecord struct {
	LineID    string                 `json:"line_id"`
	Kind      LineKind               `json:"kind"`
	BaseDate  string                 `json:"base_date"`
	Profiles  map[string]DateProfile `json:"profiles"`
	DateCount int                    `json:"date_count"`
}
