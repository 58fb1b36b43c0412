package geometry

import (
	"fmt"
	"math"
)

// squareGeoJSON builds a closed axis-aligned square of the given side length
// in meters, centered on (lng, lat).
func squareGeoJSON(lng, lat, sideM float64) []byte {
	dLat := sideM / 2 * 180 / (math.Pi * earthRadiusM)
	dLng := dLat / math.Cos(lat*math.Pi/180)
	return []byte(fmt.Sprintf(
		`{"type":"Polygon","coordinates":[[[%f,%f],[%f,%f],[%f,%f],[%f,%f],[%f,%f]]]}`,
		lng-dLng, lat-dLat,
		lng+dLng, lat-dLat,
		lng+dLng, lat+dLat,
		lng-dLng, lat+dLat,
		lng-dLng, lat-dLat,
	))
}

// degPerMeterLng returns the longitude degrees spanned by one meter at the
// given latitude.
func degPerMeterLng(lat float64) float64 {
	return 180 / (math.Pi * earthRadiusM * math.Cos(lat*math.Pi/180))
}

// bowtieGeoJSON is a self-intersecting figure-eight ring.
func bowtieGeoJSON() []byte {
	return []byte(`{"type":"Polygon","coordinates":[[[0,0],[2,2],[2,0],[0,2],[0,0]]]}`)
}
