// Package geometry wraps the planar and spherical geometry operations used by
// the validation and enrichment pipeline. Topology predicates (intersection,
// containment, convex hull, self-intersection) are delegated to GEOS; the
// coordinate model and GeoJSON codec come from go-geom; metric measures
// (area, perimeter, distance) are computed on a spherical Earth.
package geometry

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Parse errors. The validator maps these to user-facing error strings.
var (
	ErrEmptyGeometry = eris.New("geometry: empty geometry")
	ErrNotPolygon    = eris.New("geometry: not a GeoJSON Polygon")
	ErrNoRing        = eris.New("geometry: polygon has no coordinate ring")
	ErrOpenRing      = eris.New("geometry: ring is not closed")
	ErrShortRing     = eris.New("geometry: ring has fewer than 4 coordinates")
)

// Point is a WGS84 coordinate.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Bounds is a geographic bounding box.
type Bounds struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

// Center returns the midpoint of the box edges.
func (b Bounds) Center() Point {
	return Point{Lng: (b.MinLng + b.MaxLng) / 2, Lat: (b.MinLat + b.MaxLat) / 2}
}

// Polygon is a parsed single-ring listing polygon. Only the outer ring is
// modeled; holes are not part of the listing data contract.
type Polygon struct {
	g   *geom.Polygon
	raw []byte // normalized GeoJSON, feeds the GEOS bridge
}

// Geometry is a parsed catalog geometry (Polygon or MultiPolygon). Boundary
// catalog rows are opaque to the coordinate model; only GEOS predicates are
// evaluated against them.
type Geometry struct {
	raw []byte
}

// Normalize returns canonical GeoJSON bytes for a geometry that may arrive
// either as a JSON object or as a JSON-encoded string. Catalog rows store
// both representations.
func Normalize(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptyGeometry
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, eris.Wrap(err, "geometry: decode string geometry")
		}
		trimmed = bytes.TrimSpace([]byte(s))
		if len(trimmed) == 0 {
			return nil, ErrEmptyGeometry
		}
	}
	if !json.Valid(trimmed) {
		return nil, eris.New("geometry: invalid JSON geometry")
	}
	return trimmed, nil
}

// ParsePolygon parses a GeoJSON Polygon and enforces the structural ring
// invariants: at least one ring, ring closed, at least 4 coordinates.
func ParsePolygon(raw []byte) (*Polygon, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	var g geom.T
	if err := geojson.Unmarshal(normalized, &g); err != nil {
		return nil, eris.Wrap(err, "geometry: unmarshal GeoJSON")
	}

	poly, ok := g.(*geom.Polygon)
	if !ok {
		return nil, ErrNotPolygon
	}
	if poly.NumLinearRings() == 0 {
		return nil, ErrNoRing
	}

	ring := poly.LinearRing(0).Coords()
	if len(ring) < 4 {
		return nil, ErrShortRing
	}
	first, last := ring[0], ring[len(ring)-1]
	if first[0] != last[0] || first[1] != last[1] {
		return nil, ErrOpenRing
	}

	return &Polygon{g: poly, raw: normalized}, nil
}

// ParseGeometry parses a catalog geometry, accepting Polygon and MultiPolygon.
func ParseGeometry(raw []byte) (*Geometry, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(normalized, &envelope); err != nil {
		return nil, eris.Wrap(err, "geometry: decode geometry type")
	}
	switch envelope.Type {
	case "Polygon", "MultiPolygon":
	default:
		return nil, eris.Errorf("geometry: unsupported catalog geometry type %q", envelope.Type)
	}

	return &Geometry{raw: normalized}, nil
}

// Ring returns the outer ring coordinates, including the closing coordinate.
func (p *Polygon) Ring() []geom.Coord {
	return p.g.LinearRing(0).Coords()
}

// VertexCount returns the number of distinct vertices, excluding the closing
// duplicate.
func (p *Polygon) VertexCount() int {
	return len(p.Ring()) - 1
}

// Bounds returns the polygon's bounding box.
func (p *Polygon) Bounds() Bounds {
	b := p.g.Bounds()
	return Bounds{
		MinLng: b.Min(0),
		MinLat: b.Min(1),
		MaxLng: b.Max(0),
		MaxLat: b.Max(1),
	}
}

// GeoJSON returns the normalized GeoJSON encoding of the polygon.
func (p *Polygon) GeoJSON() []byte {
	return p.raw
}
