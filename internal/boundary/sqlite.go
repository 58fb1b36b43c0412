package boundary

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteCatalog implements Catalog on an embedded SQLite database. Used for
// local development and offline catalog work; geometry is stored as TEXT.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens (or creates) a SQLite catalog at the given path.
func NewSQLiteCatalog(dsn string) (*SQLiteCatalog, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "boundary: exec %s", pragma)
		}
	}
	return &SQLiteCatalog{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS admin_regions (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	geometry TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS admin_districts (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	region_id TEXT NOT NULL,
	geometry  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS admin_wards (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	district_id TEXT NOT NULL,
	geometry    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS admin_street_villages (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	ward_id  TEXT NOT NULL,
	geometry TEXT NOT NULL
);
`

// Migrate creates the catalog tables if they do not exist.
func (c *SQLiteCatalog) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "boundary: migrate sqlite catalog")
	}
	return nil
}

// Units returns candidate units at a level ordered by name then id.
func (c *SQLiteCatalog) Units(ctx context.Context, level Level, parentID string) ([]Unit, error) {
	table, parentCol := tableForLevel(level)
	if table == "" {
		return nil, eris.Errorf("boundary: unknown level %q", level)
	}

	var (
		rows *sql.Rows
		err  error
	)
	if parentCol == "" {
		rows, err = c.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, name, geometry FROM %s ORDER BY name, id`, table))
	} else {
		rows, err = c.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, name, geometry FROM %s WHERE %s = ? ORDER BY name, id`, table, parentCol), parentID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: query %s", table)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		var geomText string
		if err := rows.Scan(&u.ID, &u.Name, &geomText); err != nil {
			return nil, eris.Wrapf(err, "boundary: scan %s row", table)
		}
		u.Geometry = []byte(geomText)
		u.ParentID = parentID
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "boundary: iterate %s rows", table)
	}
	return units, nil
}

// UpsertUnits inserts or replaces catalog rows at a level, keyed by id.
func (c *SQLiteCatalog) UpsertUnits(ctx context.Context, level Level, units []Unit) (int64, error) {
	table, parentCol := tableForLevel(level)
	if table == "" {
		return 0, eris.Errorf("boundary: unknown level %q", level)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "boundary: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var stmt *sql.Stmt
	if parentCol == "" {
		stmt, err = tx.PrepareContext(ctx, fmt.Sprintf(
			`INSERT OR REPLACE INTO %s (id, name, geometry) VALUES (?, ?, ?)`, table))
	} else {
		stmt, err = tx.PrepareContext(ctx, fmt.Sprintf(
			`INSERT OR REPLACE INTO %s (id, name, %s, geometry) VALUES (?, ?, ?, ?)`, table, parentCol))
	}
	if err != nil {
		return 0, eris.Wrapf(err, "boundary: prepare upsert %s", table)
	}
	defer stmt.Close()

	var n int64
	for _, u := range units {
		if parentCol == "" {
			_, err = stmt.ExecContext(ctx, u.ID, u.Name, string(u.Geometry))
		} else {
			_, err = stmt.ExecContext(ctx, u.ID, u.Name, u.ParentID, string(u.Geometry))
		}
		if err != nil {
			return n, eris.Wrapf(err, "boundary: upsert %s id %s", table, u.ID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return n, eris.Wrap(err, "boundary: commit tx")
	}
	return n, nil
}

// Count returns the number of units stored at a level.
func (c *SQLiteCatalog) Count(ctx context.Context, level Level) (int64, error) {
	table, _ := tableForLevel(level)
	if table == "" {
		return 0, eris.Errorf("boundary: unknown level %q", level)
	}
	var n int64
	if err := c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, table)).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "boundary: count %s", table)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
