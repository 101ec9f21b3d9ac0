package inspection

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shelftrack/model"
)

// OverdueSweep reports materials whose next_inspection date has passed, and
// materials left pointing at a shelf that no longer exists. It only observes
// and logs; repairs stay with the lifecycle manager's normal operations.
// Returns the two counts for callers that want them.
func (p *Processor) OverdueSweep(ctx context.Context) (overdue int, dangling int) {
	db := p.db.WithContext(ctx)
	now := time.Now()

	var due []model.Material
	if err := db.Where("next_inspection IS NOT NULL AND next_inspection < ?", now).
		Find(&due).Error; err != nil {
		p.logger.Warn("overdue sweep query failed", zap.Error(err))
		return 0, 0
	}
	for _, m := range due {
		p.logger.Warn("inspection overdue",
			zap.Int64("material_id", m.ID),
			zap.String("name", m.Name),
			zap.Timep("next_inspection", m.NextInspection))
	}

	var orphaned []model.Material
	if err := db.Where("shelf_id IS NOT NULL AND shelf_id NOT IN (SELECT id FROM shelves)").
		Find(&orphaned).Error; err != nil {
		p.logger.Warn("dangling reference query failed", zap.Error(err))
		return len(due), 0
	}
	for _, m := range orphaned {
		p.logger.Warn("material references deleted shelf",
			zap.Int64("material_id", m.ID),
			zap.Int64p("shelf_id", m.ShelfID),
			zap.String("position", m.Position))
	}

	return len(due), len(orphaned)
}
