// Package boundary resolves listing polygons against the four-level Tanzanian
// administrative hierarchy (Region -> District -> Ward -> Street/Village) and
// manages the externally curated boundary catalog.
package boundary

import "encoding/json"

// Level identifies one tier of the administrative hierarchy.
type Level string

// Hierarchy levels, outermost first.
const (
	LevelRegion        Level = "region"
	LevelDistrict      Level = "district"
	LevelWard          Level = "ward"
	LevelStreetVillage Level = "street_village"
)

// Levels returns the hierarchy in cascade order.
func Levels() []Level {
	return []Level{LevelRegion, LevelDistrict, LevelWard, LevelStreetVillage}
}

// Unit is one administrative boundary row. Geometry is raw GeoJSON as stored
// in the catalog: either an object or a JSON-encoded string; the geometry
// kernel normalizes both.
type Unit struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	ParentID string          `json:"parent_id,omitempty"`
	Geometry json.RawMessage `json:"geometry"`
}

// Match is the outcome of a boundary resolution. Unmatched levels stay nil;
// partial matches are valid results, not errors.
type Match struct {
	RegionID        *string `json:"region_id"`
	DistrictID      *string `json:"district_id"`
	WardID          *string `json:"ward_id"`
	StreetVillageID *string `json:"street_village_id"`
}

// set records the matched unit id for a level.
func (m *Match) set(level Level, id string) {
	switch level {
	case LevelRegion:
		m.RegionID = &id
	case LevelDistrict:
		m.DistrictID = &id
	case LevelWard:
		m.WardID = &id
	case LevelStreetVillage:
		m.StreetVillageID = &id
	}
}
