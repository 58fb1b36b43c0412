package listing

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardhi-group/parcel-cli/internal/boundary"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func TestStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, geometry FROM listings WHERE id").
		WithArgs("listing-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "geometry"}).
			AddRow("listing-1", []byte(`{"type":"Polygon"}`)))

	l, err := store.Get(context.Background(), "listing-1")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "listing-1", l.ID)
	assert.JSONEq(t, `{"type":"Polygon"}`, string(l.Geometry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, geometry FROM listings WHERE id").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	l, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestStoreUpsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO listings").
		WithArgs("listing-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.Upsert(context.Background(), Listing{
		ID:       "listing-1",
		Geometry: []byte(`{"type":"Polygon"}`),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpsertRequiresID(t *testing.T) {
	store, _ := newMockStore(t)
	require.Error(t, store.Upsert(context.Background(), Listing{}))
}

func TestStoreCandidatesExcludesSelf(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, geometry FROM listings WHERE id <>").
		WithArgs("listing-1", 200).
		WillReturnRows(pgxmock.NewRows([]string{"id", "geometry"}).
			AddRow("listing-2", []byte(`{"type":"Polygon"}`)).
			AddRow("listing-3", []byte(`{"type":"Polygon"}`)))

	candidates, err := store.Candidates(context.Background(), "listing-1", 0)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "listing-2", candidates[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveBoundaryMatch(t *testing.T) {
	store, mock := newMockStore(t)

	region := "region-a"
	district := "district-a1"
	mock.ExpectExec("UPDATE listings SET").
		WithArgs("listing-1", &region, &district, (*string)(nil), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.SaveBoundaryMatch(context.Background(), "listing-1", boundary.Match{
		RegionID:   &region,
		DistrictID: &district,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveBoundaryMatchUnknownListing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE listings SET").
		WithArgs("ghost", (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.SaveBoundaryMatch(context.Background(), "ghost", boundary.Match{})
	require.Error(t, err)
}
