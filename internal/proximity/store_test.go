package proximity

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func TestStoreMigrate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS listing_proximity").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO listing_proximity").
		WithArgs("listing-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	record := &Record{
		ListingID:   "listing-1",
		NearestRoad: &Place{Name: "Bagamoyo Road", Kind: "primary", DistanceM: 120.5},
		Roads:       []Place{{Name: "Bagamoyo Road", Kind: "primary", DistanceM: 120.5}},
	}
	require.NoError(t, store.Upsert(context.Background(), record))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpsertRequiresListingID(t *testing.T) {
	store, _ := newMockStore(t)

	require.Error(t, store.Upsert(context.Background(), nil))
	require.Error(t, store.Upsert(context.Background(), &Record{}))
}

func TestStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT record FROM listing_proximity").
		WithArgs("listing-1").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).
			AddRow([]byte(`{"listing_id":"listing-1","nearest_road":{"name":"Bagamoyo Road","distance_m":120.5},"roads":[],"hospitals":[],"schools":[],"marketplaces":[],"transit":[]}`)))

	record, err := store.Get(context.Background(), "listing-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "listing-1", record.ListingID)
	require.NotNil(t, record.NearestRoad)
	assert.Equal(t, "Bagamoyo Road", record.NearestRoad.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT record FROM listing_proximity").
		WithArgs("listing-404").
		WillReturnError(pgx.ErrNoRows)

	record, err := store.Get(context.Background(), "listing-404")
	require.NoError(t, err)
	assert.Nil(t, record)
	require.NoError(t, mock.ExpectationsWereMet())
}
