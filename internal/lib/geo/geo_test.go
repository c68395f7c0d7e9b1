package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame(t *testing.T) {
	frame, err := NewFrame(33.2)
	require.NoError(t, err)

	assert.Equal(t, 33.2, frame.ReferenceLatitude)
	assert.InDelta(t, 110574, frame.MetersPerDegreeLat, 0.001)
	// cos(33.2 deg) ~= 0.8368
	assert.InDelta(t, 110574*math.Cos(33.2*math.Pi/180), frame.MetersPerDegreeLon, 0.001)

	_, err = NewFrame(91)
	assert.Error(t, err, "latitude outside [-90, 90] should be rejected")

	_, err = NewFrameWithScale(33.2, 0)
	assert.Error(t, err, "non-positive scale should be rejected")
}

func TestFrame_ToLocalMeters(t *testing.T) {
	frame, err := NewFrame(0)
	require.NoError(t, err)

	// At the equator, lat and lon scales are equal.
	x, y := frame.ToLocalMeters(0.001, 0.002, 0, 0)
	assert.InDelta(t, 110.574, x, 0.001)
	assert.InDelta(t, 221.148, y, 0.001)

	x, y = frame.ToLocalMeters(0, 0, 0, 0)
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestFrame_PointToSegment(t *testing.T) {
	frame, err := NewFrame(0)
	require.NoError(t, err)

	// Segment running ~111m north from the origin.
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0.001, Longitude: 0}

	// Point halfway along, offset ~11m east.
	p := Point{Latitude: 0.0005, Longitude: 0.0001}
	proj := frame.PointToSegment(p, a, b)
	assert.InDelta(t, 11.0574, proj.DistanceMeters, 0.001)
	assert.InDelta(t, 0.5, proj.T, 1e-9)
	assert.InDelta(t, 55.287, proj.AlongMeters, 0.001)

	// Point equal to the start endpoint.
	proj = frame.PointToSegment(a, a, b)
	assert.Zero(t, proj.DistanceMeters)
	assert.Zero(t, proj.T)
	assert.Zero(t, proj.AlongMeters)

	// Point equal to the end endpoint.
	proj = frame.PointToSegment(b, a, b)
	assert.InDelta(t, 0, proj.DistanceMeters, 1e-9)
	assert.InDelta(t, 1, proj.T, 1e-9)
	assert.InDelta(t, 110.574, proj.AlongMeters, 0.001)

	// Point beyond the end is clamped to the endpoint.
	beyond := Point{Latitude: 0.002, Longitude: 0}
	proj = frame.PointToSegment(beyond, a, b)
	assert.InDelta(t, 1, proj.T, 1e-9)
	assert.InDelta(t, 110.574, proj.DistanceMeters, 0.001)

	// Point before the start is clamped to the start.
	before := Point{Latitude: -0.001, Longitude: 0}
	proj = frame.PointToSegment(before, a, b)
	assert.Zero(t, proj.T)
	assert.InDelta(t, 110.574, proj.DistanceMeters, 0.001)
}

func TestFrame_PointToSegment_Degenerate(t *testing.T) {
	frame, err := NewFrame(0)
	require.NoError(t, err)

	a := Point{Latitude: 0.0005, Longitude: 0.0005}

	// Zero-length segment behaves as a point.
	p := Point{Latitude: 0.0005, Longitude: 0.0006}
	proj := frame.PointToSegment(p, a, a)
	assert.InDelta(t, 11.0574, proj.DistanceMeters, 0.001)
	assert.Zero(t, proj.T)
	assert.Zero(t, proj.AlongMeters)
}

func TestHaversine(t *testing.T) {
	// One degree of latitude at the equator is ~111.19 km for R=6371km.
	d := Haversine(Point{Latitude: 0, Longitude: 0}, Point{Latitude: 1, Longitude: 0})
	assert.InDelta(t, 111195, d, 10)

	// Identical points are exactly zero.
	p := Point{Latitude: 33.19, Longitude: -117.38}
	assert.Zero(t, Haversine(p, p))

	// Symmetry.
	q := Point{Latitude: 33.20, Longitude: -117.39}
	assert.InDelta(t, Haversine(p, q), Haversine(q, p), 1e-9)
}

func TestBearing(t *testing.T) {
	origin := Point{Latitude: 0, Longitude: 0}

	assert.InDelta(t, 0, Bearing(origin, Point{Latitude: 1, Longitude: 0}), 0.01)
	assert.InDelta(t, 90, Bearing(origin, Point{Latitude: 0, Longitude: 1}), 0.01)
	assert.InDelta(t, 180, Bearing(origin, Point{Latitude: -1, Longitude: 0}), 0.01)
	assert.InDelta(t, 270, Bearing(origin, Point{Latitude: 0, Longitude: -1}), 0.01)
}

func TestIsValidCoordinate(t *testing.T) {
	assert.True(t, IsValidCoordinate(Point{Latitude: 33.19, Longitude: -117.38}))
	assert.False(t, IsValidCoordinate(Point{Latitude: 200, Longitude: -300}))
	assert.False(t, IsValidCoordinate(Point{Latitude: 0, Longitude: 181}))
}
