// Package listing reads and writes the land-parcel listings that the
// geospatial pipeline enriches. Only the fields this subsystem touches are
// modeled; the marketplace owns the rest of the listing record.
package listing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/ardhi-group/parcel-cli/internal/boundary"
	"github.com/ardhi-group/parcel-cli/internal/db"
)

// Listing is one land-parcel listing with its submitted polygon.
type Listing struct {
	ID       string          `json:"id"`
	Geometry json.RawMessage `json:"geometry"`
}

// Store persists listings and their resolved administrative location.
type Store struct {
	pool db.Pool
}

// NewStore creates a store over the given pool.
func NewStore(pool db.Pool) *Store {
	return &Store{pool: pool}
}

const migration = `
CREATE TABLE IF NOT EXISTS listings (
	id                TEXT PRIMARY KEY,
	geometry          JSONB NOT NULL,
	region_id         TEXT,
	district_id       TEXT,
	ward_id           TEXT,
	street_village_id TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the listings table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migration); err != nil {
		return eris.Wrap(err, "listing: migrate")
	}
	return nil
}

// Get returns a listing by id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Listing, error) {
	var l Listing
	err := s.pool.QueryRow(ctx,
		`SELECT id, geometry FROM listings WHERE id = $1`, id,
	).Scan(&l.ID, &l.Geometry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "listing: get %s", id)
	}
	return &l, nil
}

// Upsert inserts or replaces a listing's polygon.
func (s *Store) Upsert(ctx context.Context, l Listing) error {
	if l.ID == "" {
		return eris.New("listing: id required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO listings (id, geometry, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET
			geometry = EXCLUDED.geometry,
			updated_at = now()`,
		l.ID, []byte(l.Geometry),
	)
	if err != nil {
		return eris.Wrapf(err, "listing: upsert %s", l.ID)
	}
	return nil
}

// Candidates returns other listings to compare a polygon against, newest
// first. The comparator does the real geometric filtering; this is just the
// candidate pool.
func (s *Store) Candidates(ctx context.Context, excludeID string, limit int) ([]Listing, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, geometry FROM listings WHERE id <> $1 ORDER BY created_at DESC LIMIT $2`,
		excludeID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "listing: query candidates")
	}
	defer rows.Close()
	return scanListings(rows)
}

// All returns every listing, for batch duplicate scans.
func (s *Store) All(ctx context.Context) ([]Listing, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, geometry FROM listings ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "listing: query all")
	}
	defer rows.Close()
	return scanListings(rows)
}

func scanListings(rows pgx.Rows) ([]Listing, error) {
	var listings []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.Geometry); err != nil {
			return nil, eris.Wrap(err, "listing: scan row")
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "listing: iterate rows")
	}
	return listings, nil
}

// SaveBoundaryMatch persists the resolved administrative location for a
// listing. Unmatched levels are stored as NULL.
func (s *Store) SaveBoundaryMatch(ctx context.Context, id string, match boundary.Match) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE listings SET
			region_id = $2,
			district_id = $3,
			ward_id = $4,
			street_village_id = $5,
			updated_at = now()
		WHERE id = $1`,
		id, match.RegionID, match.DistrictID, match.WardID, match.StreetVillageID,
	)
	if err != nil {
		return eris.Wrapf(err, "listing: save boundary match for %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("listing: no listing with id %s", id)
	}
	return nil
}
