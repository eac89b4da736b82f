package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

func setupTestDBGeo(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "states", "cities", "areas")
}

func TestGeoService_Hierarchy(t *testing.T) {
	db := setupTestDBGeo(t, "testdb_geo_service_hierarchy")
	svc := NewGeoService(db)
	ctx := context.Background()

	state, err := svc.AddState(ctx, "Gujarat")
	require.NoError(t, err)
	require.NotNil(t, state)

	city, err := svc.AddCity(ctx, "Ahmedabad", state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, city.StateID)

	area, err := svc.AddArea(ctx, "Navrangpura", city.ID, state.ID, "380009")
	require.NoError(t, err)
	assert.Equal(t, city.ID, area.CityID)

	// Children of a missing parent are refused
	_, err = svc.AddCity(ctx, "Nowhere", utils.NewSixID())
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
	_, err = svc.AddArea(ctx, "Nowhere", utils.NewSixID(), state.ID, "000000")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	// Name lookups resolve, unknown ids degrade to empty
	assert.Equal(t, "Gujarat", svc.StateName(ctx, state.ID))
	assert.Equal(t, "Ahmedabad", svc.CityName(ctx, city.ID))
	assert.Equal(t, "Navrangpura", svc.AreaName(ctx, area.ID))
	assert.Equal(t, "", svc.StateName(ctx, utils.NewSixID()))
}

func TestGeoService_ListsAreSortedByName(t *testing.T) {
	db := setupTestDBGeo(t, "testdb_geo_service_sorted")
	svc := NewGeoService(db)
	ctx := context.Background()

	for _, name := range []string{"Maharashtra", "Gujarat", "Karnataka"} {
		_, err := svc.AddState(ctx, name)
		require.NoError(t, err)
	}
	states, err := svc.GetStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "Gujarat", states[0].Name)
	assert.Equal(t, "Karnataka", states[1].Name)
	assert.Equal(t, "Maharashtra", states[2].Name)
}

func TestGeoService_ScopedLists(t *testing.T) {
	db := setupTestDBGeo(t, "testdb_geo_service_scoped")
	svc := NewGeoService(db)
	ctx := context.Background()

	gj, err := svc.AddState(ctx, "Gujarat")
	require.NoError(t, err)
	mh, err := svc.AddState(ctx, "Maharashtra")
	require.NoError(t, err)

	_, err = svc.AddCity(ctx, "Surat", gj.ID)
	require.NoError(t, err)
	ahd, err := svc.AddCity(ctx, "Ahmedabad", gj.ID)
	require.NoError(t, err)
	_, err = svc.AddCity(ctx, "Pune", mh.ID)
	require.NoError(t, err)

	cities, err := svc.GetCitiesByState(ctx, gj.ID)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Ahmedabad", cities[0].Name)
	assert.Equal(t, "Surat", cities[1].Name)

	_, err = svc.AddArea(ctx, "Bodakdev", ahd.ID, gj.ID, "380054")
	require.NoError(t, err)
	_, err = svc.AddArea(ctx, "Ambawadi", ahd.ID, gj.ID, "380006")
	require.NoError(t, err)

	areas, err := svc.GetAreasByCity(ctx, ahd.ID)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "Ambawadi", areas[0].Name)
	assert.Equal(t, "Bodakdev", areas[1].Name)
}
