// Package registry owns shelves and their fixed position grids. It is the
// source of truth for occupancy; it knows nothing about materials beyond the
// reference stored in a position.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelftrack/core"
	"shelftrack/model"
)

// levelCodes maps shelf levels to the short codes used in position ids.
var levelCodes = map[string]string{
	model.LevelHigh: "H",
	model.LevelMid:  "M",
	model.LevelLow:  "L",
}

// levels in grid order, top level first.
var levels = []string{model.LevelHigh, model.LevelMid, model.LevelLow}

// Registry manages shelves and position occupancy.
type Registry struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a Registry.
func New(db *gorm.DB, logger *zap.Logger) *Registry {
	return &Registry{
		db:     db,
		logger: logger,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// LockShelf acquires the mutex for one shelf and returns its unlock func.
// Occupancy flips on a shelf are serialized through this lock so that the
// occupied flag and the material reference never drift apart.
func (r *Registry) LockShelf(shelfID int64) (unlock func()) {
	r.mu.Lock()
	l, ok := r.locks[shelfID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[shelfID] = l
	}
	r.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// PositionCode builds the stable identifier for a slot: "{row}{number}-{levelCode}{slot}".
func PositionCode(row string, number int, level string, slot int) string {
	return fmt.Sprintf("%s%d-%s%d", row, number, levelCodes[level], slot)
}

// Create persists a new shelf with its nine positions, all unoccupied.
// Returns core.ErrDuplicateShelf if a shelf with the same (row, number)
// already exists.
func (r *Registry) Create(ctx context.Context, name, row string, number int, color string, createdBy *int64) (*model.Shelf, error) {
	shelf := &model.Shelf{
		Name:      name,
		Row:       row,
		Number:    number,
		Color:     color,
		CreatedBy: createdBy,
	}
	for _, level := range levels {
		for slot := 1; slot <= model.SlotsPerLevel; slot++ {
			shelf.Positions = append(shelf.Positions, model.Position{
				Code:  PositionCode(row, number, level, slot),
				Level: level,
				Slot:  slot,
			})
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Shelf
		err := tx.Where("`row` = ? AND number = ?", row, number).First(&existing).Error
		if err == nil {
			return core.ErrDuplicateShelf
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(shelf).Error
	})
	if err != nil {
		// Unique index catches the race two concurrent creates can win.
		if core.IsUniqueViolation(err) {
			return nil, core.ErrDuplicateShelf
		}
		return nil, err
	}
	r.logger.Info("shelf created",
		zap.Int64("shelf_id", shelf.ID),
		zap.String("row", row),
		zap.Int("number", number))
	return shelf, nil
}

// List returns all shelves with their positions, ordered by row then number.
func (r *Registry) List(ctx context.Context) ([]model.Shelf, error) {
	var shelves []model.Shelf
	err := r.db.WithContext(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("positions.id ASC")
		}).
		Order("`row` ASC, number ASC").
		Find(&shelves).Error
	return shelves, err
}

// Get returns one shelf with its positions.
func (r *Registry) Get(ctx context.Context, id int64) (*model.Shelf, error) {
	var shelf model.Shelf
	err := r.db.WithContext(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("positions.id ASC")
		}).
		First(&shelf, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}

// Delete removes a shelf and all its positions. Materials referencing the
// shelf are NOT touched; their shelf_id/position become dangling references.
// Callers wanting a clean delete must free the materials first.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	unlock := r.LockShelf(id)
	defer unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shelf model.Shelf
		if err := tx.First(&shelf, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.ErrNotFound
			}
			return err
		}
		if err := tx.Where("shelf_id = ?", id).Delete(&model.Position{}).Error; err != nil {
			return err
		}
		return tx.Delete(&shelf).Error
	})
}

// SetOccupancy flips one position's occupied flag and material reference
// together under the shelf lock. A position already holding a different
// material is silently overwritten; the previous occupant keeps its stale
// placement fields. Returns core.ErrPositionNotFound if the code does not
// exist on the shelf.
func (r *Registry) SetOccupancy(ctx context.Context, shelfID int64, positionCode string, occupied bool, materialID *int64) error {
	unlock := r.LockShelf(shelfID)
	defer unlock()
	return r.SetOccupancyTx(r.db.WithContext(ctx), shelfID, positionCode, occupied, materialID)
}

// SetOccupancyTx is SetOccupancy inside an existing transaction. The caller
// must already hold the shelf lock via LockShelf.
func (r *Registry) SetOccupancyTx(tx *gorm.DB, shelfID int64, positionCode string, occupied bool, materialID *int64) error {
	var pos model.Position
	err := tx.Where("shelf_id = ? AND code = ?", shelfID, positionCode).First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrPositionNotFound
	}
	if err != nil {
		return err
	}
	return tx.Model(&pos).Updates(map[string]interface{}{
		"occupied":    occupied,
		"material_id": materialID,
	}).Error
}

// OccupiedCount sums occupied positions across all shelves.
func (r *Registry) OccupiedCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Position{}).
		Where("occupied = ?", true).Count(&n).Error
	return n, err
}
