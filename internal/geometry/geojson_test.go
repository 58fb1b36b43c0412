package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ObjectGeometry(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[]}`)
	out, err := Normalize(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestNormalize_StringGeometry(t *testing.T) {
	// Catalog rows sometimes hold geometry as a JSON-encoded string.
	raw := []byte(`"{\"type\":\"Polygon\",\"coordinates\":[]}"`)
	out, err := Normalize(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Polygon","coordinates":[]}`, string(out))
}

func TestNormalize_Empty(t *testing.T) {
	_, err := Normalize([]byte("  "))
	assert.ErrorIs(t, err, ErrEmptyGeometry)
}

func TestParsePolygon_Valid(t *testing.T) {
	p, err := ParsePolygon(squareGeoJSON(39.28, -6.82, 100))
	require.NoError(t, err)
	assert.Equal(t, 4, p.VertexCount())

	ring := p.Ring()
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")
}

func TestParsePolygon_NotPolygon(t *testing.T) {
	_, err := ParsePolygon([]byte(`{"type":"Point","coordinates":[39.28,-6.82]}`))
	assert.Error(t, err)
}

func TestParsePolygon_OpenRing(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}`)
	_, err := ParsePolygon(raw)
	assert.Error(t, err)
}

func TestParsePolygon_TooFewCoordinates(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[[[0,0],[1,1],[0,0]]]}`)
	_, err := ParsePolygon(raw)
	assert.ErrorIs(t, err, ErrShortRing)
}

func TestParseGeometry_MultiPolygon(t *testing.T) {
	raw := []byte(`{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,1],[0,0]]]]}`)
	g, err := ParseGeometry(raw)
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestParseGeometry_RejectsPoint(t *testing.T) {
	_, err := ParseGeometry([]byte(`{"type":"Point","coordinates":[1,1]}`))
	assert.Error(t, err)
}

func TestBounds_Center(t *testing.T) {
	p, err := ParsePolygon(squareGeoJSON(39.28, -6.82, 100))
	require.NoError(t, err)

	c := p.Bounds().Center()
	assert.InDelta(t, 39.28, c.Lng, 1e-9)
	assert.InDelta(t, -6.82, c.Lat, 1e-9)
}
