package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelftrack/core"
	"shelftrack/core/registry"
	"shelftrack/model"
	"shelftrack/testutil"
)

func newTestManager(t *testing.T) (*Manager, *registry.Registry, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	reg := registry.New(db, zap.NewNop())
	return NewManager(db, reg, zap.NewNop()), reg, db
}

func validInput(shelf *model.Shelf, position string) CreateInput {
	in := CreateInput{
		Name:      "Cordless Drill",
		Category:  "tools",
		EntryDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Condition: 85,
		Shelf:     shelf.Name,
		ShelfID:   &shelf.ID,
		Position:  position,
	}
	return in
}

func positionByCode(t *testing.T, reg *registry.Registry, shelfID int64, code string) model.Position {
	t.Helper()
	shelf, err := reg.Get(context.Background(), shelfID)
	require.NoError(t, err)
	for _, p := range shelf.Positions {
		if p.Code == code {
			return p
		}
	}
	t.Fatalf("position %s not found", code)
	return model.Position{}
}

func TestCreate_OccupiesPosition(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	mat, err := mgr.Create(ctx, validInput(shelf, "A1-H1"), "")
	require.NoError(t, err)
	assert.Equal(t, model.StateGood, mat.State)

	pos := positionByCode(t, reg, shelf.ID, "A1-H1")
	assert.True(t, pos.Occupied)
	require.NotNil(t, pos.MaterialID)
	assert.Equal(t, mat.ID, *pos.MaterialID)
}

func TestCreate_MissingRequiredField(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	in := validInput(shelf, "A1-H1")
	in.Name = ""
	_, err = mgr.Create(ctx, in, "")

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestCreate_OverwritesOccupiedPosition(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	first, err := mgr.Create(ctx, validInput(shelf, "A1-H1"), "")
	require.NoError(t, err)

	in := validInput(shelf, "A1-H1")
	in.Name = "Impact Driver"
	second, err := mgr.Create(ctx, in, "")
	require.NoError(t, err)

	// The position now points at the newcomer; the displaced material keeps
	// its stale placement fields.
	pos := positionByCode(t, reg, shelf.ID, "A1-H1")
	require.NotNil(t, pos.MaterialID)
	assert.Equal(t, second.ID, *pos.MaterialID)

	displaced, err := mgr.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1-H1", displaced.Position)
}

func TestCreate_UnknownPositionRollsBack(t *testing.T) {
	mgr, reg, db := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	_, err = mgr.Create(ctx, validInput(shelf, "A1-X9"), "")
	assert.ErrorIs(t, err, core.ErrPositionNotFound)

	var n int64
	require.NoError(t, db.Model(&model.Material{}).Count(&n).Error)
	assert.Zero(t, n, "failed create must not leave a material behind")
}

func TestDelete_FreesPosition(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)
	mat, err := mgr.Create(ctx, validInput(shelf, "A1-H1"), "")
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, mat.ID))

	pos := positionByCode(t, reg, shelf.ID, "A1-H1")
	assert.False(t, pos.Occupied)
	assert.Nil(t, pos.MaterialID)

	_, err = mgr.Get(ctx, mat.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	assert.ErrorIs(t, mgr.Delete(context.Background(), 12345), core.ErrNotFound)
}

func TestDelete_SurvivesDeletedShelf(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)
	mat, err := mgr.Create(ctx, validInput(shelf, "A1-H1"), "")
	require.NoError(t, err)

	// Shelf deletion leaves the material dangling; deleting the material
	// afterwards must still work.
	require.NoError(t, reg.Delete(ctx, shelf.ID))
	require.NoError(t, mgr.Delete(ctx, mat.ID))
}

func TestUpdate_ConditionReclassifies(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	in := validInput(shelf, "A1-H1")
	in.Condition = 30
	mat, err := mgr.Create(ctx, in, "")
	require.NoError(t, err)
	require.Equal(t, model.StateBad, mat.State)

	newCond := 90
	updated, err := mgr.Update(ctx, mat.ID, UpdateInput{Condition: &newCond}, "")
	require.NoError(t, err)
	assert.Equal(t, 90, updated.Condition)
	assert.Equal(t, model.StateGood, updated.State)

	// Placement is untouched by edits.
	assert.Equal(t, "A1-H1", updated.Position)
	require.NotNil(t, updated.ShelfID)
	assert.Equal(t, shelf.ID, *updated.ShelfID)
}

func TestUpdate_NotFound(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	name := "x"
	_, err := mgr.Update(context.Background(), 999, UpdateInput{Name: &name}, "")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdate_DoesNotSyncOccupancy(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)
	mat, err := mgr.Create(ctx, validInput(shelf, "A1-H1"), "")
	require.NoError(t, err)

	// Moving the material via update changes only the material record;
	// occupancy bookkeeping happens at create and delete.
	newPos := "A1-L3"
	_, err = mgr.Update(ctx, mat.ID, UpdateInput{Position: &newPos}, "")
	require.NoError(t, err)

	old := positionByCode(t, reg, shelf.ID, "A1-H1")
	assert.True(t, old.Occupied)
	moved := positionByCode(t, reg, shelf.ID, "A1-L3")
	assert.False(t, moved.Occupied)
}

func seedMaterial(t *testing.T, mgr *Manager, shelf *model.Shelf, name, category, position string, condition int) *model.Material {
	t.Helper()
	in := validInput(shelf, position)
	in.Name = name
	in.Category = category
	in.Condition = condition
	mat, err := mgr.Create(context.Background(), in, "")
	require.NoError(t, err)
	return mat
}

func TestList_Filters(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	seedMaterial(t, mgr, shelf, "Cordless Drill", "tools", "A1-H1", 85)
	seedMaterial(t, mgr, shelf, "Hammer Drill", "tools", "A1-H2", 55)
	seedMaterial(t, mgr, shelf, "Paint Bucket", "paint", "A1-H3", 30)

	byName, err := mgr.List(ctx, Filter{Name: "drill"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byCategory, err := mgr.List(ctx, Filter{Category: "paint"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Paint Bucket", byCategory[0].Name)

	byState, err := mgr.List(ctx, Filter{State: model.StateWarning})
	require.NoError(t, err)
	require.Len(t, byState, 1)
	assert.Equal(t, "Hammer Drill", byState[0].Name)

	min, max := 40, 79
	byRange, err := mgr.List(ctx, Filter{MinCondition: &min, MaxCondition: &max})
	require.NoError(t, err)
	require.Len(t, byRange, 1)
	assert.Equal(t, 55, byRange[0].Condition)

	// Range bounds are inclusive.
	lo, hi := 30, 85
	inclusive, err := mgr.List(ctx, Filter{MinCondition: &lo, MaxCondition: &hi})
	require.NoError(t, err)
	assert.Len(t, inclusive, 3)

	// Conjunctive: name AND state.
	both, err := mgr.List(ctx, Filter{Name: "drill", State: model.StateGood})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "Cordless Drill", both[0].Name)
}

func TestList_NewestFirst(t *testing.T) {
	mgr, reg, _ := newTestManager(t)
	ctx := context.Background()

	shelf, err := reg.Create(ctx, "Tools", "A", 1, "", nil)
	require.NoError(t, err)

	first := seedMaterial(t, mgr, shelf, "Older", "tools", "A1-H1", 50)
	second := seedMaterial(t, mgr, shelf, "Newer", "tools", "A1-H2", 50)

	list, err := mgr.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
