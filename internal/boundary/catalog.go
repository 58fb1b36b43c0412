package boundary

import "context"

// Catalog is the read/write interface over the administrative boundary
// reference data. Resolution only reads; the shapefile loader writes.
type Catalog interface {
	// Units returns the candidate units at a level. parentID filters by the
	// matched parent unit; it is empty only at the region level. Results are
	// ordered deterministically (name, then id) so first-match resolution is
	// stable across runs.
	Units(ctx context.Context, level Level, parentID string) ([]Unit, error)

	// UpsertUnits inserts or replaces catalog rows at a level, keyed by id.
	UpsertUnits(ctx context.Context, level Level, units []Unit) (int64, error)

	// Count returns the number of units stored at a level.
	Count(ctx context.Context, level Level) (int64, error)

	// Migrate creates the catalog tables if they do not exist.
	Migrate(ctx context.Context) error
}

// tableForLevel maps a hierarchy level to its table and parent column. The
// region table has no parent column.
func tableForLevel(level Level) (table, parentCol string) {
	switch level {
	case LevelRegion:
		return "admin_regions", ""
	case LevelDistrict:
		return "admin_districts", "region_id"
	case LevelWard:
		return "admin_wards", "district_id"
	case LevelStreetVillage:
		return "admin_street_villages", "ward_id"
	default:
		return "", ""
	}
}
