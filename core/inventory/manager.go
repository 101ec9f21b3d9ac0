// Package inventory implements the material lifecycle: creation, edits,
// deletion and filtered listing. It is the single authority for keeping a
// material's placement and the registry's occupancy in step.
package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelftrack/core"
	"shelftrack/core/health"
	"shelftrack/core/registry"
	"shelftrack/model"
)

// Manager handles material lifecycle operations.
type Manager struct {
	db       *gorm.DB
	registry *registry.Registry
	logger   *zap.Logger
}

// NewManager creates a Manager backed by the given registry.
func NewManager(db *gorm.DB, reg *registry.Registry, logger *zap.Logger) *Manager {
	return &Manager{db: db, registry: reg, logger: logger}
}

// CreateInput holds the validated fields for a new material.
type CreateInput struct {
	Name           string
	Category       string
	Description    string
	Notes          string
	EntryDate      time.Time
	Condition      int
	Shelf          string
	ShelfID        *int64
	Position       string
	NextInspection *time.Time
	CreatedBy      *int64
}

// UpdateInput holds a partial material edit; nil fields are left untouched.
type UpdateInput struct {
	Name           *string
	Category       *string
	Description    *string
	Notes          *string
	EntryDate      *time.Time
	Condition      *int
	Shelf          *string
	ShelfID        *int64
	Position       *string
	NextInspection *time.Time
}

// Filter narrows a material listing. All predicates are conjunctive; zero
// values mean "no constraint".
type Filter struct {
	Name         string // case-insensitive substring
	Category     string
	State        string
	Shelf        string
	MinCondition *int // inclusive
	MaxCondition *int // inclusive
}

func validateCreate(in CreateInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return core.Invalid("name", "required")
	case strings.TrimSpace(in.Category) == "":
		return core.Invalid("category", "required")
	case in.EntryDate.IsZero():
		return core.Invalid("entry_date", "required")
	case strings.TrimSpace(in.Shelf) == "":
		return core.Invalid("shelf", "required")
	case strings.TrimSpace(in.Position) == "":
		return core.Invalid("position", "required")
	}
	return nil
}

// Create persists a material and, when a shelf is referenced, occupies the
// target position in the same transaction. Placing onto an already occupied
// position overwrites the occupant reference; the displaced material keeps
// its stale shelf_id/position fields.
func (m *Manager) Create(ctx context.Context, in CreateInput, imagePath string) (*model.Material, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	mat := &model.Material{
		Name:           in.Name,
		Category:       in.Category,
		Description:    in.Description,
		Notes:          in.Notes,
		EntryDate:      in.EntryDate,
		Condition:      in.Condition,
		State:          health.Classify(in.Condition),
		Shelf:          in.Shelf,
		ShelfID:        in.ShelfID,
		Position:       in.Position,
		ImagePath:      imagePath,
		NextInspection: in.NextInspection,
		CreatedBy:      in.CreatedBy,
	}

	if in.ShelfID != nil {
		unlock := m.registry.LockShelf(*in.ShelfID)
		defer unlock()
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mat).Error; err != nil {
			return err
		}
		if in.ShelfID == nil {
			return nil
		}
		return m.registry.SetOccupancyTx(tx, *in.ShelfID, in.Position, true, &mat.ID)
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("material created",
		zap.Int64("material_id", mat.ID),
		zap.String("state", mat.State),
		zap.String("position", mat.Position))
	return mat, nil
}

// Get returns one material by id.
func (m *Manager) Get(ctx context.Context, id int64) (*model.Material, error) {
	var mat model.Material
	err := m.db.WithContext(ctx).First(&mat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mat, nil
}

// Update merges the provided fields over the stored material. A condition
// change re-runs the classifier. Placement fields can be edited but occupancy
// bookkeeping only happens at create and delete; an edit that moves a
// material does not free or claim positions.
func (m *Manager) Update(ctx context.Context, id int64, in UpdateInput, imagePath string) (*model.Material, error) {
	mat, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.EntryDate != nil {
		updates["entry_date"] = *in.EntryDate
	}
	if in.Condition != nil {
		updates["condition"] = *in.Condition
		updates["state"] = health.Classify(*in.Condition)
	}
	if in.Shelf != nil {
		updates["shelf"] = *in.Shelf
	}
	if in.ShelfID != nil {
		updates["shelf_id"] = *in.ShelfID
	}
	if in.Position != nil {
		updates["position"] = *in.Position
	}
	if in.NextInspection != nil {
		updates["next_inspection"] = *in.NextInspection
	}
	if imagePath != "" {
		updates["image_path"] = imagePath
	}
	if len(updates) == 0 {
		return mat, nil
	}

	if err := m.db.WithContext(ctx).Model(mat).Updates(updates).Error; err != nil {
		return nil, err
	}
	return m.Get(ctx, id)
}

// Delete frees the material's position first, then removes the record, so an
// occupied position never points at an unreachable material. A position that
// no longer exists (its shelf was deleted underneath the material) is skipped.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	mat, err := m.Get(ctx, id)
	if err != nil {
		return err
	}

	if mat.ShelfID != nil {
		unlock := m.registry.LockShelf(*mat.ShelfID)
		defer unlock()
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mat.ShelfID != nil {
			err := m.registry.SetOccupancyTx(tx, *mat.ShelfID, mat.Position, false, nil)
			if err != nil && !errors.Is(err, core.ErrPositionNotFound) {
				return err
			}
		}
		return tx.Delete(&model.Material{}, id).Error
	})
}

// List returns materials matching the filter, newest first.
func (m *Manager) List(ctx context.Context, f Filter) ([]model.Material, error) {
	q := m.db.WithContext(ctx).Model(&model.Material{})
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.Shelf != "" {
		q = q.Where("shelf = ?", f.Shelf)
	}
	if f.MinCondition != nil {
		q = q.Where("`condition` >= ?", *f.MinCondition)
	}
	if f.MaxCondition != nil {
		q = q.Where("`condition` <= ?", *f.MaxCondition)
	}

	var materials []model.Material
	err := q.Order("created_at DESC, id DESC").Find(&materials).Error
	return materials, err
}
