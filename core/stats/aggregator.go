// Package stats computes point-in-time aggregates over materials and shelves.
// Nothing is cached or materialized; every figure is read on demand.
package stats

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelftrack/model"
)

// Aggregator answers stats queries.
type Aggregator struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(db *gorm.DB, logger *zap.Logger) *Aggregator {
	return &Aggregator{db: db, logger: logger}
}

// Overview is the aggregate snapshot returned to clients. AverageCondition is
// nil when there are no materials.
type Overview struct {
	TotalMaterials       int64            `json:"total_materials"`
	GoodMaterials        int64            `json:"good_materials"`
	WarningMaterials     int64            `json:"warning_materials"`
	BadMaterials         int64            `json:"bad_materials"`
	TotalShelves         int64            `json:"total_shelves"`
	OccupiedPositions    int64            `json:"occupied_positions"`
	CategoryDistribution map[string]int64 `json:"category_distribution"`
	AverageCondition     *float64         `json:"average_condition"`
}

// Overview computes all figures. Each one is an independent read; a figure
// that fails is logged and left at its zero value rather than blocking the
// rest.
func (a *Aggregator) Overview(ctx context.Context) *Overview {
	db := a.db.WithContext(ctx)
	ov := &Overview{CategoryDistribution: make(map[string]int64)}

	count := func(name string, q *gorm.DB, dst *int64) {
		if err := q.Count(dst).Error; err != nil {
			a.logger.Warn("stats figure failed", zap.String("figure", name), zap.Error(err))
		}
	}
	count("total_materials", db.Model(&model.Material{}), &ov.TotalMaterials)
	count("good_materials", db.Model(&model.Material{}).Where("state = ?", model.StateGood), &ov.GoodMaterials)
	count("warning_materials", db.Model(&model.Material{}).Where("state = ?", model.StateWarning), &ov.WarningMaterials)
	count("bad_materials", db.Model(&model.Material{}).Where("state = ?", model.StateBad), &ov.BadMaterials)
	count("total_shelves", db.Model(&model.Shelf{}), &ov.TotalShelves)
	count("occupied_positions", db.Model(&model.Position{}).Where("occupied = ?", true), &ov.OccupiedPositions)

	var byCategory []struct {
		Category string
		Count    int64
	}
	if err := db.Model(&model.Material{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&byCategory).Error; err != nil {
		a.logger.Warn("stats figure failed", zap.String("figure", "category_distribution"), zap.Error(err))
	}
	for _, row := range byCategory {
		ov.CategoryDistribution[row.Category] = row.Count
	}

	var avg sql.NullFloat64
	if err := db.Model(&model.Material{}).
		Select("AVG(`condition`)").
		Scan(&avg).Error; err != nil {
		a.logger.Warn("stats figure failed", zap.String("figure", "average_condition"), zap.Error(err))
	} else if avg.Valid {
		ov.AverageCondition = &avg.Float64
	}

	return ov
}
