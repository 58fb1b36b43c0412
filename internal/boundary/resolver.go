package boundary

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ardhi-group/parcel-cli/internal/geometry"
)

// Resolver walks the administrative hierarchy for a listing polygon.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve finds the containing administrative unit at each hierarchy level.
//
// The polygon's centroid is computed once. At each level, candidates are
// filtered by the parent matched at the previous level; the first candidate
// whose geometry contains the centroid or intersects the polygon wins. An
// unmatched level stops the cascade: lower levels are never attempted without
// a matched parent. Catalog read failures and malformed candidate geometries
// degrade to "no match" rather than aborting the resolution, so partial
// matches are an expected outcome.
func (r *Resolver) Resolve(ctx context.Context, poly *geometry.Polygon) (Match, error) {
	var match Match
	if poly == nil {
		return match, eris.New("boundary: nil polygon")
	}

	centroid, err := poly.Centroid()
	if err != nil {
		return match, eris.Wrap(err, "boundary: polygon centroid")
	}

	parentID := ""
	for _, level := range Levels() {
		units, err := r.catalog.Units(ctx, level, parentID)
		if err != nil {
			if ctx.Err() != nil {
				return match, eris.Wrap(err, "boundary: resolution canceled")
			}
			zap.L().Warn("boundary: catalog read failed, stopping cascade",
				zap.String("level", string(level)),
				zap.Error(err),
			)
			break
		}

		matched := r.matchUnit(units, centroid, poly, level)
		if matched == "" {
			break
		}
		match.set(level, matched)
		parentID = matched
	}

	return match, nil
}

// matchUnit returns the id of the first unit containing the centroid or
// intersecting the polygon. Candidates with malformed geometry are skipped.
func (r *Resolver) matchUnit(units []Unit, centroid geometry.Point, poly *geometry.Polygon, level Level) string {
	for _, u := range units {
		g, err := geometry.ParseGeometry(u.Geometry)
		if err != nil {
			zap.L().Warn("boundary: skipping unit with malformed geometry",
				zap.String("level", string(level)),
				zap.String("unit_id", u.ID),
				zap.Error(err),
			)
			continue
		}

		contains, err := g.ContainsPoint(centroid)
		if err != nil {
			zap.L().Warn("boundary: containment check failed, skipping unit",
				zap.String("level", string(level)),
				zap.String("unit_id", u.ID),
				zap.Error(err),
			)
			continue
		}
		if contains {
			return u.ID
		}

		intersects, err := g.IntersectsPolygon(poly)
		if err != nil {
			zap.L().Warn("boundary: intersection check failed, skipping unit",
				zap.String("level", string(level)),
				zap.String("unit_id", u.ID),
				zap.Error(err),
			)
			continue
		}
		if intersects {
			return u.ID
		}
	}
	return ""
}
