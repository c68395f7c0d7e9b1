package geo

import (
	"errors"
	"math"
)

const (
	// earthRadiusMeters is the mean Earth radius used by the haversine formula.
	earthRadiusMeters = 6371000

	// defaultMetersPerDegreeLat is the per-degree latitude scale used when a
	// Frame is built without an explicit override. One degree of latitude is
	// close to constant everywhere on the ellipsoid.
	defaultMetersPerDegreeLat = 110574

	// degenerateSegmentLenSq is the squared local-meter length below which a
	// segment is treated as a point (roughly a millimeter).
	degenerateSegmentLenSq = 1e-6
)

// NewFrame builds a local planar frame for the given reference latitude using
// the default latitude scale. The longitude scale shrinks with cos(lat).
func NewFrame(referenceLatitude float64) (Frame, error) {
	return NewFrameWithScale(referenceLatitude, defaultMetersPerDegreeLat)
}

// NewFrameWithScale builds a frame with an explicit meters-per-degree-latitude
// scale, for callers that need to match an external coordinate convention.
func NewFrameWithScale(referenceLatitude, metersPerDegreeLat float64) (Frame, error) {
	if referenceLatitude < -90 || referenceLatitude > 90 {
		return Frame{}, errors.New("reference latitude must be in [-90, 90]")
	}
	if metersPerDegreeLat <= 0 {
		return Frame{}, errors.New("meters per degree latitude must be positive")
	}
	return Frame{
		ReferenceLatitude:  referenceLatitude,
		MetersPerDegreeLat: metersPerDegreeLat,
		MetersPerDegreeLon: metersPerDegreeLat * math.Cos(referenceLatitude*math.Pi/180),
	}, nil
}

// ToLocalMeters converts a coordinate to planar meters relative to an origin.
func (f Frame) ToLocalMeters(lon, lat, originLon, originLat float64) (x, y float64) {
	x = (lon - originLon) * f.MetersPerDegreeLon
	y = (lat - originLat) * f.MetersPerDegreeLat
	return x, y
}

// PointToSegment projects a point onto the segment from a to b and returns the
// perpendicular distance, the clamped projection ratio, and the distance along
// the segment to the projected point. A degenerate segment falls back to the
// point-to-point distance with t = 0.
func (f Frame) PointToSegment(p, a, b Point) SegmentProjection {
	px, py := f.ToLocalMeters(p.Longitude, p.Latitude, a.Longitude, a.Latitude)
	bx, by := f.ToLocalMeters(b.Longitude, b.Latitude, a.Longitude, a.Latitude)

	segLenSq := bx*bx + by*by
	if segLenSq < degenerateSegmentLenSq {
		return SegmentProjection{
			DistanceMeters: math.Hypot(px, py),
			T:              0,
			AlongMeters:    0,
		}
	}

	t := (px*bx + py*by) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	projX := t * bx
	projY := t * by

	return SegmentProjection{
		DistanceMeters: math.Hypot(px-projX, py-projY),
		T:              t,
		AlongMeters:    t * math.Sqrt(segLenSq),
	}
}

// Haversine calculates the great-circle distance between two points in meters.
// Segment lengths along reference lines use this rather than the planar frame
// so cumulative distances stay accurate over longer lines.
func Haversine(p1, p2 Point) float64 {
	if p1.Latitude == p2.Latitude && p1.Longitude == p2.Longitude {
		return 0
	}

	lat1 := p1.Latitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	dlat := (p2.Latitude - p1.Latitude) * math.Pi / 180
	dlon := (p2.Longitude - p1.Longitude) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Bearing calculates the initial bearing from p1 to p2 in degrees [0, 360).
// 0 is north, 90 is east. Used by upstream segmentation to detect turnarounds.
func Bearing(p1, p2 Point) float64 {
	lat1 := p1.Latitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	dlon := (p2.Longitude - p1.Longitude) * math.Pi / 180

	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// IsValidCoordinate validates latitude and longitude ranges.
func IsValidCoordinate(p Point) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}
