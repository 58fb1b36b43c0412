package geometry

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geos"
)

// go-geos surfaces GEOS exceptions as panics. Every exported kernel operation
// goes through recoverGeos so callers see an error instead.
func recoverGeos(err *error) {
	if r := recover(); r != nil {
		*err = eris.Errorf("geometry: geos: %v", r)
	}
}

func geosFromGeoJSON(raw []byte) (g *geos.Geom, err error) {
	defer recoverGeos(&err)
	g, err = geos.NewGeomFromGeoJSON(string(raw))
	if err != nil {
		return nil, eris.Wrap(err, "geometry: geos decode")
	}
	if g == nil {
		return nil, eris.New("geometry: geos returned nil geometry")
	}
	return g, nil
}

// SelfIntersects reports whether the outer ring crosses itself (a "kink").
// The ring is evaluated as a closed linestring; equal endpoints are allowed.
func (p *Polygon) SelfIntersects() (result bool, err error) {
	defer recoverGeos(&err)

	ring := p.Ring()
	var sb strings.Builder
	sb.WriteString("LINESTRING (")
	for i, c := range ring {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%.12f %.12f", c[0], c[1])
	}
	sb.WriteString(")")

	line, err := geos.NewGeomFromWKT(sb.String())
	if err != nil {
		return false, eris.Wrap(err, "geometry: build ring linestring")
	}
	return !line.IsSimple(), nil
}

// ConvexHullAreaM2 returns the spherical area of the polygon's convex hull.
func (p *Polygon) ConvexHullAreaM2() (area float64, err error) {
	defer recoverGeos(&err)

	g, err := geosFromGeoJSON(p.raw)
	if err != nil {
		return 0, err
	}
	hull := g.ConvexHull()
	if hull == nil || hull.IsEmpty() {
		return 0, eris.New("geometry: empty convex hull")
	}
	return geoJSONAreaM2([]byte(hull.ToGeoJSON(-1)))
}

// IntersectionAreaM2 returns the spherical area of the polygonal intersection
// of a and b in square meters. Zero means the polygons do not overlap (touching
// edges and shared points carry no area).
func IntersectionAreaM2(a, b *Polygon) (area float64, err error) {
	defer recoverGeos(&err)

	ga, err := geosFromGeoJSON(a.raw)
	if err != nil {
		return 0, err
	}
	gb, err := geosFromGeoJSON(b.raw)
	if err != nil {
		return 0, err
	}
	if !ga.Intersects(gb) {
		return 0, nil
	}

	inter := ga.Intersection(gb)
	if inter == nil || inter.IsEmpty() {
		return 0, nil
	}
	return geoJSONAreaM2([]byte(inter.ToGeoJSON(-1)))
}

// ContainsPoint reports whether the catalog geometry contains the point.
func (g *Geometry) ContainsPoint(pt Point) (result bool, err error) {
	defer recoverGeos(&err)

	gg, err := geosFromGeoJSON(g.raw)
	if err != nil {
		return false, err
	}
	point, err := geos.NewGeomFromWKT(fmt.Sprintf("POINT (%.12f %.12f)", pt.Lng, pt.Lat))
	if err != nil {
		return false, eris.Wrap(err, "geometry: build point")
	}
	return gg.Contains(point), nil
}

// IntersectsPolygon reports whether the catalog geometry intersects the
// listing polygon.
func (g *Geometry) IntersectsPolygon(p *Polygon) (result bool, err error) {
	defer recoverGeos(&err)

	gg, err := geosFromGeoJSON(g.raw)
	if err != nil {
		return false, err
	}
	gp, err := geosFromGeoJSON(p.raw)
	if err != nil {
		return false, err
	}
	return gg.Intersects(gp), nil
}

// geoJSONAreaM2 decodes a GeoJSON geometry and sums the spherical area of its
// polygonal components. Non-areal components contribute zero.
func geoJSONAreaM2(raw []byte) (float64, error) {
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return 0, eris.Wrap(err, "geometry: decode area geometry")
	}
	return geomAreaM2(g), nil
}

func geomAreaM2(g geom.T) float64 {
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonAreaM2(t)
	case *geom.MultiPolygon:
		var total float64
		for i := 0; i < t.NumPolygons(); i++ {
			total += polygonAreaM2(t.Polygon(i))
		}
		return total
	case *geom.GeometryCollection:
		var total float64
		for i := 0; i < t.NumGeoms(); i++ {
			total += geomAreaM2(t.Geom(i))
		}
		return total
	default:
		return 0
	}
}

// polygonAreaM2 is exterior ring area minus hole areas.
func polygonAreaM2(p *geom.Polygon) float64 {
	if p.NumLinearRings() == 0 {
		return 0
	}
	area := ringAreaM2(p.LinearRing(0).Coords())
	for i := 1; i < p.NumLinearRings(); i++ {
		area -= ringAreaM2(p.LinearRing(i).Coords())
	}
	if area < 0 {
		return 0
	}
	return area
}
