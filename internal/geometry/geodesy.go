package geometry

import (
	"math"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// HaversineM returns the great-circle distance between two points in meters.
func HaversineM(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// AreaM2 returns the polygon's spherical surface area in square meters.
func (p *Polygon) AreaM2() float64 {
	return ringAreaM2(p.Ring())
}

// PerimeterM returns the length of the outer ring in meters.
func (p *Polygon) PerimeterM() float64 {
	ring := p.Ring()
	var total float64
	for i := 0; i+1 < len(ring); i++ {
		total += HaversineM(
			Point{Lng: ring[i][0], Lat: ring[i][1]},
			Point{Lng: ring[i+1][0], Lat: ring[i+1][1]},
		)
	}
	return total
}

// Centroid returns the planar area-weighted centroid of the polygon.
func (p *Polygon) Centroid() (Point, error) {
	c, err := xy.Centroid(p.g)
	if err != nil {
		return Point{}, eris.Wrap(err, "geometry: centroid")
	}
	return Point{Lng: c[0], Lat: c[1]}, nil
}

// EdgeLengthsM returns the great-circle width and height of a bounding box,
// measured along its southern and western edges.
func (b Bounds) EdgeLengthsM() (width, height float64) {
	width = HaversineM(
		Point{Lng: b.MinLng, Lat: b.MinLat},
		Point{Lng: b.MaxLng, Lat: b.MinLat},
	)
	height = HaversineM(
		Point{Lng: b.MinLng, Lat: b.MinLat},
		Point{Lng: b.MinLng, Lat: b.MaxLat},
	)
	return width, height
}

// ringAreaM2 computes the spherical area of a closed ring in square meters
// using the trapezoid form of the spherical excess approximation. Accurate to
// well under a percent at parcel scale.
func ringAreaM2(ring []geom.Coord) float64 {
	if len(ring) < 4 {
		return 0
	}
	var total float64
	for i := 0; i+1 < len(ring); i++ {
		lng1 := ring[i][0] * math.Pi / 180
		lat1 := ring[i][1] * math.Pi / 180
		lng2 := ring[i+1][0] * math.Pi / 180
		lat2 := ring[i+1][1] * math.Pi / 180
		total += (lng2 - lng1) * (2 + math.Sin(lat1) + math.Sin(lat2))
	}
	return math.Abs(total) * earthRadiusM * earthRadiusM / 4
}
