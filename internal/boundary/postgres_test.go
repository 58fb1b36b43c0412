package boundary

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockCatalog(t *testing.T) (*PostgresCatalog, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresCatalog(mock), mock
}

func TestPostgresCatalogMigrate(t *testing.T) {
	catalog, mock := newMockCatalog(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS admin_regions").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, catalog.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalogUnitsRegionLevel(t *testing.T) {
	catalog, mock := newMockCatalog(t)

	mock.ExpectQuery(`SELECT id, name, geometry FROM admin_regions ORDER BY name, id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "geometry"}).
			AddRow("region-a", "Arusha", []byte(`{"type":"Polygon"}`)).
			AddRow("region-d", "Dar es Salaam", []byte(`{"type":"Polygon"}`)))

	units, err := catalog.Units(context.Background(), LevelRegion, "")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "region-a", units[0].ID)
	assert.Equal(t, "Arusha", units[0].Name)
	assert.Empty(t, units[0].ParentID)
	assert.JSONEq(t, `{"type":"Polygon"}`, string(units[0].Geometry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalogUnitsFiltersByParent(t *testing.T) {
	catalog, mock := newMockCatalog(t)

	mock.ExpectQuery(`SELECT id, name, geometry FROM admin_wards WHERE district_id = \$1 ORDER BY name, id`).
		WithArgs("district-a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "geometry"}).
			AddRow("ward-a1a", "Kinondoni", []byte(`{"type":"Polygon"}`)))

	units, err := catalog.Units(context.Background(), LevelWard, "district-a1")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "ward-a1a", units[0].ID)
	assert.Equal(t, "district-a1", units[0].ParentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalogUnitsUnknownLevel(t *testing.T) {
	catalog, _ := newMockCatalog(t)
	_, err := catalog.Units(context.Background(), Level("province"), "")
	require.Error(t, err)
}

func TestPostgresCatalogCount(t *testing.T) {
	catalog, mock := newMockCatalog(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM admin_districts`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(31)))

	n, err := catalog.Count(context.Background(), LevelDistrict)
	require.NoError(t, err)
	assert.Equal(t, int64(31), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
