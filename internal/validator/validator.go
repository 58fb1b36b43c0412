// Package validator performs structural and semantic validation of submitted
// land-parcel polygons. Validation never returns a Go error: every failure
// mode is folded into the Result so callers can decide accept/reject/review.
package validator

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ardhi-group/parcel-cli/internal/geometry"
)

// Validation thresholds. Errors block acceptance; warnings flag a listing for
// reviewer attention.
const (
	MinAreaM2       = 10.0        // below this the parcel is a degenerate sliver
	MaxAreaM2       = 100_000_000 // 100 km2, implausible for a single parcel
	MaxAspectRatio  = 20.0
	MinVertices     = 3
	MaxVertices     = 1000
	ConvexTolerance = 0.01 // hull area within 1% of polygon area counts as convex
)

// Tanzania bounding box. Centroids outside it are warned, not rejected:
// parcels near borders or entered in the wrong datum still deserve review.
const (
	countryMinLng = 29.34
	countryMaxLng = 40.44
	countryMinLat = -11.75
	countryMaxLat = -0.95
)

// Metrics carries the informational measurements of a structurally sound
// polygon.
type Metrics struct {
	AreaM2      float64        `json:"area_m2"`
	PerimeterM  float64        `json:"perimeter_m"`
	Centroid    geometry.Point `json:"centroid"`
	IsConvex    bool           `json:"is_convex"`
	VertexCount int            `json:"vertex_count"`
}

// Result is the outcome of a validation run. Valid is true iff Errors is
// empty; Warnings never affect validity.
type Result struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Metrics  *Metrics `json:"metrics,omitempty"`
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// geoJSONEnvelope is the minimal structural shape checked before geometry
// construction.
type geoJSONEnvelope struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Validate checks a submitted GeoJSON polygon. The input may be a JSON object
// or a JSON-encoded string. Errors and warnings accumulate; the function does
// not short-circuit unless a later check is structurally impossible.
func Validate(raw []byte) Result {
	var res Result
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("validator: panic during validation", zap.Any("panic", r))
			res = Result{Errors: []string{"validation failed: internal geometry error"}}
		}
		res.Valid = len(res.Errors) == 0
	}()

	// Structural checks before any geometry is built.
	normalized, err := geometry.Normalize(raw)
	if err != nil {
		res.addError("geometry is missing or not valid JSON")
		return res
	}
	var envelope geoJSONEnvelope
	if err := json.Unmarshal(normalized, &envelope); err != nil {
		res.addError("geometry is not a JSON object")
		return res
	}
	if envelope.Type != "Polygon" {
		res.addError("geometry type must be Polygon, got %q", envelope.Type)
		return res
	}
	if len(envelope.Coordinates) == 0 {
		res.addError("geometry has no coordinates array")
		return res
	}

	poly, err := geometry.ParsePolygon(normalized)
	if err != nil {
		zap.L().Debug("validator: polygon construction failed", zap.Error(err))
		switch {
		case eris.Is(err, geometry.ErrShortRing):
			res.addError("polygon has fewer than %d distinct vertices", MinVertices)
		case eris.Is(err, geometry.ErrOpenRing):
			res.addError("polygon ring is not closed")
		default:
			res.addError("polygon could not be constructed from coordinates")
		}
		return res
	}

	// Self-intersection is a hard error: area and orientation are undefined
	// downstream for kinked rings.
	kinked, err := poly.SelfIntersects()
	if err != nil {
		zap.L().Warn("validator: self-intersection check failed", zap.Error(err))
		res.addError("polygon geometry could not be checked for self-intersections")
		return res
	}
	if kinked {
		res.addError("polygon has self-intersections (invalid geometry)")
	}

	area := poly.AreaM2()
	if area < MinAreaM2 {
		res.addError("polygon area %.2f m2 is below the minimum of %.0f m2", area, MinAreaM2)
	}
	if area > MaxAreaM2 {
		res.addWarning("polygon area %.0f m2 exceeds %.0f m2, flag for review", area, float64(MaxAreaM2))
	}

	perimeter := poly.PerimeterM()

	width, height := poly.Bounds().EdgeLengthsM()
	if width > 0 && height > 0 {
		ratio := width / height
		if ratio < 1 {
			ratio = 1 / ratio
		}
		if ratio > MaxAspectRatio {
			res.addWarning("polygon aspect ratio %.1f exceeds %.0f, possible digitization sliver", ratio, MaxAspectRatio)
		}
	}

	vertices := poly.VertexCount()
	if vertices < MinVertices {
		res.addError("polygon has %d vertices, minimum is %d", vertices, MinVertices)
	}
	if vertices > MaxVertices {
		res.addWarning("polygon has %d vertices, consider simplifying before storage", vertices)
	}

	centroid, err := poly.Centroid()
	if err != nil {
		res.addError("polygon centroid could not be computed")
		return res
	}
	if centroid.Lng < countryMinLng || centroid.Lng > countryMaxLng ||
		centroid.Lat < countryMinLat || centroid.Lat > countryMaxLat {
		res.addWarning("polygon centroid (%.4f, %.4f) falls outside Tanzania bounds", centroid.Lng, centroid.Lat)
	}

	// Convexity is metadata only, never blocking.
	isConvex := false
	hullArea, err := poly.ConvexHullAreaM2()
	if err != nil {
		zap.L().Debug("validator: convex hull failed", zap.Error(err))
	} else if area > 0 {
		isConvex = (hullArea-area)/area < ConvexTolerance
	}

	res.Metrics = &Metrics{
		AreaM2:      area,
		PerimeterM:  perimeter,
		Centroid:    centroid,
		IsConvex:    isConvex,
		VertexCount: vertices,
	}
	return res
}
