package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shelftrack/core"
	"shelftrack/model"
	"shelftrack/testutil"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(testutil.SetupTestDB(t), zap.NewNop())
}

func TestCreate_NinePositions(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	shelf, err := r.Create(ctx, "Tools", "A", 1, "red", nil)
	require.NoError(t, err)
	require.Len(t, shelf.Positions, 9)

	perLevel := map[string]int{}
	for _, p := range shelf.Positions {
		perLevel[p.Level]++
		assert.False(t, p.Occupied)
		assert.Nil(t, p.MaterialID)
	}
	assert.Equal(t, 3, perLevel[model.LevelHigh])
	assert.Equal(t, 3, perLevel[model.LevelMid])
	assert.Equal(t, 3, perLevel[model.LevelLow])

	assert.Equal(t, "A1-H1", shelf.Positions[0].Code)
	assert.Equal(t, "A1-M2", shelf.Positions[4].Code)
	assert.Equal(t, "A1-L3", shelf.Positions[8].Code)
}

func TestCreate_DuplicateRowNumber(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "First", "A", 1, "red", nil)
	require.NoError(t, err)

	_, err = r.Create(ctx, "Second", "A", 1, "blue", nil)
	assert.ErrorIs(t, err, core.ErrDuplicateShelf)

	// Same row with another number is fine.
	_, err = r.Create(ctx, "Third", "A", 2, "blue", nil)
	assert.NoError(t, err)
}

func TestList_OrderedByRowThenNumber(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	for _, s := range []struct {
		row string
		num int
	}{{"B", 2}, {"A", 10}, {"A", 2}} {
		_, err := r.Create(ctx, "Shelf", s.row, s.num, "", nil)
		require.NoError(t, err)
	}

	shelves, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, shelves, 3)
	assert.Equal(t, []int{2, 10, 2}, []int{shelves[0].Number, shelves[1].Number, shelves[2].Number})
	assert.Equal(t, []string{"A", "A", "B"}, []string{shelves[0].Row, shelves[1].Row, shelves[2].Row})
	assert.Len(t, shelves[0].Positions, 9)
}

func TestSetOccupancy(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	shelf, err := r.Create(ctx, "Tools", "C", 3, "", nil)
	require.NoError(t, err)

	matID := int64(42)
	require.NoError(t, r.SetOccupancy(ctx, shelf.ID, "C3-M1", true, &matID))

	got, err := r.Get(ctx, shelf.ID)
	require.NoError(t, err)
	var pos *model.Position
	for i := range got.Positions {
		if got.Positions[i].Code == "C3-M1" {
			pos = &got.Positions[i]
		}
	}
	require.NotNil(t, pos)
	assert.True(t, pos.Occupied)
	require.NotNil(t, pos.MaterialID)
	assert.Equal(t, matID, *pos.MaterialID)

	// Free it again.
	require.NoError(t, r.SetOccupancy(ctx, shelf.ID, "C3-M1", false, nil))
	n, err := r.OccupiedCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSetOccupancy_UnknownPosition(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	shelf, err := r.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	matID := int64(1)
	err = r.SetOccupancy(ctx, shelf.ID, "A1-H9", true, &matID)
	assert.ErrorIs(t, err, core.ErrPositionNotFound)
}

func TestDelete(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	shelf, err := r.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, shelf.ID))
	_, err = r.Get(ctx, shelf.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, r.Delete(ctx, shelf.ID), core.ErrNotFound)
}
