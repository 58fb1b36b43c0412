// Package comparator scores pairs of listing polygons for duplicate
// detection. Scores are heuristics, not geometric truth: callers apply their
// own thresholds before surfacing a duplicate warning.
package comparator

import (
	"math"

	"go.uber.org/zap"

	"github.com/ardhi-group/parcel-cli/internal/geometry"
)

// Similarity weights. Spatial coincidence is the strongest duplicate signal,
// so overlap carries the largest weight.
const (
	areaWeight     = 0.3
	centroidWeight = 0.3
	overlapWeight  = 0.4
)

// Overlap describes the pairwise intersection of two polygons.
//
// Percent is relative to the FIRST polygon's area, not the second's and not
// the union. The asymmetry is deliberate: the caller asks "how much of this
// new polygon is already covered by an existing listing". Swapping the
// arguments changes Percent unless both areas are equal.
type Overlap struct {
	Overlaps bool    `json:"overlaps"`
	AreaM2   float64 `json:"overlap_area_m2,omitempty"`
	Percent  float64 `json:"overlap_percentage,omitempty"`
}

// ComputeOverlap intersects two polygons. Any kernel failure degrades to the
// safe default of "no overlap"; this function never returns an error.
func ComputeOverlap(p1, p2 *geometry.Polygon) Overlap {
	if p1 == nil || p2 == nil {
		return Overlap{}
	}

	area, err := geometry.IntersectionAreaM2(p1, p2)
	if err != nil {
		zap.L().Warn("comparator: intersection failed", zap.Error(err))
		return Overlap{}
	}
	if area <= 0 {
		return Overlap{}
	}

	a1 := p1.AreaM2()
	var pct float64
	if a1 > 0 {
		pct = area / a1 * 100
	}
	return Overlap{Overlaps: true, AreaM2: area, Percent: pct}
}

// Similarity returns a 0-100 duplicate-likelihood score combining area
// similarity, centroid proximity, and overlap percentage. Any computation
// failure yields 0 ("not similar") rather than an error.
func Similarity(p1, p2 *geometry.Polygon) int {
	if p1 == nil || p2 == nil {
		return 0
	}

	a1, a2 := p1.AreaM2(), p2.AreaM2()
	maxArea := math.Max(a1, a2)
	if maxArea <= 0 {
		return 0
	}
	areaSim := 1 - math.Abs(a1-a2)/maxArea

	c1, err := p1.Centroid()
	if err != nil {
		zap.L().Warn("comparator: centroid failed", zap.Error(err))
		return 0
	}
	c2, err := p2.Centroid()
	if err != nil {
		zap.L().Warn("comparator: centroid failed", zap.Error(err))
		return 0
	}

	// Scale-normalized cutoff: similarity degrades proportionally to parcel
	// size instead of a fixed meter threshold.
	maxDistance := math.Sqrt(maxArea) * 2
	centroidSim := 0.0
	if maxDistance > 0 {
		centroidSim = math.Max(0, 1-geometry.HaversineM(c1, c2)/maxDistance)
	}

	overlapSim := ComputeOverlap(p1, p2).Percent / 100

	score := 100 * (areaWeight*areaSim + centroidWeight*centroidSim + overlapWeight*overlapSim)
	return int(math.Round(score))
}
