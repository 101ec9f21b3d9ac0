package rest_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelftrack/core/stats"
)

func TestStats_EmptyDataset(t *testing.T) {
	env := newTestEnv(t)

	w := doRequest(env.r, http.MethodGet, "/api/stats", env.token)
	require.Equal(t, http.StatusOK, w.Code)
	var ov stats.Overview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ov))

	assert.Zero(t, ov.TotalMaterials)
	assert.Zero(t, ov.TotalShelves)
	assert.Nil(t, ov.AverageCondition)
}

func TestStats_ReflectsInventory(t *testing.T) {
	env := newTestEnv(t)
	shelf := createTestShelf(t, env, "Tool rack", "A", 1)

	f := materialFields(shelf, "A1-H1")
	f["condition"] = "90" // good
	createTestMaterial(t, env, f)

	f = materialFields(shelf, "A1-M1")
	f["condition"] = "50" // warning
	f["category"] = "chemicals"
	createTestMaterial(t, env, f)

	w := doRequest(env.r, http.MethodGet, "/api/stats", env.token)
	require.Equal(t, http.StatusOK, w.Code)
	var ov stats.Overview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ov))

	assert.Equal(t, int64(2), ov.TotalMaterials)
	assert.Equal(t, int64(1), ov.TotalShelves)
	assert.Equal(t, int64(1), ov.GoodMaterials)
	assert.Equal(t, int64(1), ov.WarningMaterials)
	assert.Equal(t, int64(0), ov.BadMaterials)
	assert.Equal(t, int64(2), ov.OccupiedPositions)
	assert.Equal(t, int64(1), ov.CategoryDistribution["tools"])
	assert.Equal(t, int64(1), ov.CategoryDistribution["chemicals"])
	require.NotNil(t, ov.AverageCondition)
	assert.InDelta(t, 70.0, *ov.AverageCondition, 0.001)
}
