package proximity

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/ardhi-group/parcel-cli/internal/db"
)

// Store persists proximity records, one row per listing.
type Store struct {
	pool db.Pool
}

// NewStore creates a store over the given pool.
func NewStore(pool db.Pool) *Store {
	return &Store{pool: pool}
}

const migration = `
CREATE TABLE IF NOT EXISTS listing_proximity (
	listing_id   TEXT PRIMARY KEY,
	record       JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the proximity table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migration); err != nil {
		return eris.Wrap(err, "proximity: migrate")
	}
	return nil
}

// Upsert stores the record keyed by listing id, replacing any prior record.
// Recomputation overwrites; there is no history.
func (s *Store) Upsert(ctx context.Context, record *Record) error {
	if record == nil || record.ListingID == "" {
		return eris.New("proximity: record with listing id required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "proximity: encode record")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO listing_proximity (listing_id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (listing_id) DO UPDATE SET
			record = EXCLUDED.record,
			updated_at = now()`,
		record.ListingID, payload,
	)
	if err != nil {
		return eris.Wrap(err, "proximity: upsert record")
	}
	return nil
}

// Get returns the stored record for a listing, or nil when none exists.
func (s *Store) Get(ctx context.Context, listingID string) (*Record, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM listing_proximity WHERE listing_id = $1`, listingID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "proximity: get record for %s", listingID)
	}

	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, eris.Wrap(err, "proximity: decode record")
	}
	return &record, nil
}
