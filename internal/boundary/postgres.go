package boundary

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/ardhi-group/parcel-cli/internal/db"
)

// PostgresCatalog implements Catalog against plain Postgres. Geometries are
// stored as jsonb; containment checks run in-process, so no PostGIS extension
// is required.
type PostgresCatalog struct {
	pool db.Pool
}

// NewPostgresCatalog creates a catalog backed by the given pool.
func NewPostgresCatalog(pool db.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS admin_regions (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	geometry JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS admin_districts (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	region_id TEXT NOT NULL REFERENCES admin_regions(id),
	geometry  JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS admin_wards (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	district_id TEXT NOT NULL REFERENCES admin_districts(id),
	geometry    JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS admin_street_villages (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	ward_id  TEXT NOT NULL REFERENCES admin_wards(id),
	geometry JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_admin_districts_region ON admin_districts(region_id);
CREATE INDEX IF NOT EXISTS idx_admin_wards_district ON admin_wards(district_id);
CREATE INDEX IF NOT EXISTS idx_admin_street_villages_ward ON admin_street_villages(ward_id);
`

// Migrate creates the catalog tables if they do not exist.
func (c *PostgresCatalog) Migrate(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "boundary: migrate catalog")
	}
	return nil
}

// Units returns candidate units at a level ordered by name then id.
func (c *PostgresCatalog) Units(ctx context.Context, level Level, parentID string) ([]Unit, error) {
	table, parentCol := tableForLevel(level)
	if table == "" {
		return nil, eris.Errorf("boundary: unknown level %q", level)
	}

	var (
		rows pgx.Rows
		err  error
	)
	if parentCol == "" {
		sql := fmt.Sprintf(`SELECT id, name, geometry FROM %s ORDER BY name, id`, table)
		rows, err = c.pool.Query(ctx, sql)
	} else {
		sql := fmt.Sprintf(`SELECT id, name, geometry FROM %s WHERE %s = $1 ORDER BY name, id`, table, parentCol)
		rows, err = c.pool.Query(ctx, sql, parentID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: query %s", table)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Geometry); err != nil {
			return nil, eris.Wrapf(err, "boundary: scan %s row", table)
		}
		u.ParentID = parentID
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "boundary: iterate %s rows", table)
	}
	return units, nil
}

// UpsertUnits bulk-upserts catalog rows at a level, keyed by id.
func (c *PostgresCatalog) UpsertUnits(ctx context.Context, level Level, units []Unit) (int64, error) {
	table, parentCol := tableForLevel(level)
	if table == "" {
		return 0, eris.Errorf("boundary: unknown level %q", level)
	}

	columns := []string{"id", "name", "geometry"}
	if parentCol != "" {
		columns = []string{"id", "name", parentCol, "geometry"}
	}

	rows := make([][]any, 0, len(units))
	for _, u := range units {
		if parentCol == "" {
			rows = append(rows, []any{u.ID, u.Name, []byte(u.Geometry)})
		} else {
			rows = append(rows, []any{u.ID, u.Name, u.ParentID, []byte(u.Geometry)})
		}
	}

	n, err := db.BulkUpsert(ctx, c.pool, db.UpsertConfig{
		Table:        table,
		Columns:      columns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "boundary: upsert %s", table)
	}
	return n, nil
}

// Count returns the number of units stored at a level.
func (c *PostgresCatalog) Count(ctx context.Context, level Level) (int64, error) {
	table, _ := tableForLevel(level)
	if table == "" {
		return 0, eris.Errorf("boundary: unknown level %q", level)
	}
	var n int64
	sql := fmt.Sprintf(`SELECT count(*) FROM %s`, table)
	if err := c.pool.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "boundary: count %s", table)
	}
	return n, nil
}
