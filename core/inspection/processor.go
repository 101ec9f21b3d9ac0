// Package inspection records inspection passes and cascades their date onto
// the referenced materials' last_inspection field.
package inspection

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelftrack/core"
	"shelftrack/model"
)

// DefaultType and DefaultStatus are applied when a recording omits them.
const (
	DefaultType   = "weekly"
	DefaultStatus = "planned"
)

// Processor records inspections and runs the cascade.
type Processor struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(db *gorm.DB, logger *zap.Logger) *Processor {
	return &Processor{db: db, logger: logger}
}

// RecordInput holds the validated fields for a new inspection.
type RecordInput struct {
	Date        time.Time
	MaterialIDs []int64
	Inspector   string
	Type        string
	Status      string
	Result      string
	Notes       string
	Report      string
}

// Record persists the inspection, then sets last_inspection on every
// referenced material that still exists. The cascade is best-effort: ids of
// materials deleted in the meantime match nothing and are skipped, and
// unknown ids never fail the recording.
func (p *Processor) Record(ctx context.Context, in RecordInput) (*model.Inspection, error) {
	if in.Date.IsZero() {
		return nil, core.Invalid("date", "required")
	}
	if strings.TrimSpace(in.Inspector) == "" {
		return nil, core.Invalid("inspector", "required")
	}

	insp := &model.Inspection{
		Date:      in.Date,
		Inspector: in.Inspector,
		Type:      in.Type,
		Status:    in.Status,
		Result:    in.Result,
		Notes:     in.Notes,
		Report:    in.Report,
	}
	if insp.Type == "" {
		insp.Type = DefaultType
	}
	if insp.Status == "" {
		insp.Status = DefaultStatus
	}

	// Snapshot the materials that exist right now; ids with no match are
	// simply not embedded.
	if len(in.MaterialIDs) > 0 {
		if err := p.db.WithContext(ctx).
			Where("id IN ?", in.MaterialIDs).
			Find(&insp.Materials).Error; err != nil {
			return nil, err
		}
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(insp).Error; err != nil {
			return err
		}
		if len(in.MaterialIDs) == 0 {
			return nil
		}
		return tx.Model(&model.Material{}).
			Where("id IN ?", in.MaterialIDs).
			Update("last_inspection", in.Date).Error
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("inspection recorded",
		zap.Int64("inspection_id", insp.ID),
		zap.Int("materials", len(insp.Materials)),
		zap.Time("date", in.Date))
	return insp, nil
}

// List returns all inspections with their material snapshots, newest first.
func (p *Processor) List(ctx context.Context) ([]model.Inspection, error) {
	var inspections []model.Inspection
	err := p.db.WithContext(ctx).
		Preload("Materials").
		Order("date DESC, id DESC").
		Find(&inspections).Error
	return inspections, err
}
