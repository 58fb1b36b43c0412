package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineM_Meridian(t *testing.T) {
	// Two points 1000m apart along a meridian.
	a := Point{Lng: 39.28, Lat: -6.82}
	b := Point{Lng: 39.28, Lat: a.Lat + 1000*180/(math.Pi*earthRadiusM)}

	assert.InDelta(t, 1000, HaversineM(a, b), 1)
}

func TestHaversineM_Zero(t *testing.T) {
	p := Point{Lng: 39.28, Lat: -6.82}
	assert.Zero(t, HaversineM(p, p))
}

func TestHaversineM_Symmetric(t *testing.T) {
	a := Point{Lng: 39.28, Lat: -6.82}
	b := Point{Lng: 39.30, Lat: -6.84}
	assert.InDelta(t, HaversineM(a, b), HaversineM(b, a), 1e-9)
}

func TestAreaM2_HectareSquare(t *testing.T) {
	p, err := ParsePolygon(squareGeoJSON(39.28, -6.82, 100))
	require.NoError(t, err)

	// 100m x 100m = 1 hectare, within 1%.
	assert.InDelta(t, 10000, p.AreaM2(), 100)
}

func TestPerimeterM_HectareSquare(t *testing.T) {
	p, err := ParsePolygon(squareGeoJSON(39.28, -6.82, 100))
	require.NoError(t, err)

	assert.InDelta(t, 400, p.PerimeterM(), 4)
}

func TestCentroid_Square(t *testing.T) {
	p, err := ParsePolygon(squareGeoJSON(39.28, -6.82, 100))
	require.NoError(t, err)

	c, err := p.Centroid()
	require.NoError(t, err)
	assert.InDelta(t, 39.28, c.Lng, 1e-6)
	assert.InDelta(t, -6.82, c.Lat, 1e-6)
}

func TestEdgeLengthsM_ElongatedBox(t *testing.T) {
	b := Bounds{MinLng: 39.28, MinLat: -6.82, MaxLng: 39.28 + 0.01, MaxLat: -6.82 + 0.001}
	w, h := b.EdgeLengthsM()
	assert.Greater(t, w, h)
	assert.InDelta(t, 10, w/h, 1)
}
