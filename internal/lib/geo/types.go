package geo

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// SegmentProjection is the result of projecting a point onto a single segment.
// T is the clamped projection ratio: 0 at the segment start, 1 at the end,
// so the closest point always lies on the segment itself.
type SegmentProjection struct {
	DistanceMeters float64 `json:"distance_meters"`
	T              float64 `json:"t"`
	AlongMeters    float64 `json:"along_meters"`
}

// Frame is a local tangent-plane approximation anchored at a fixed reference
// latitude. Every conversion in a run shares one Frame so projected
// coordinates are mutually consistent; the approximation is only valid for
// extents of a few kilometers.
type Frame struct {
	ReferenceLatitude  float64 `json:"reference_latitude"`
	MetersPerDegreeLat float64 `json:"meters_per_degree_lat"`
	MetersPerDegreeLon float64 `json:"meters_per_degree_lon"`
}
