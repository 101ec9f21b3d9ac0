package model

import "time"

// Shelf levels, top to bottom. Every shelf carries the same fixed grid:
// three levels with three slots each.
const (
	LevelHigh = "High"
	LevelMid  = "Mid"
	LevelLow  = "Low"
)

// SlotsPerLevel is the number of positions on each shelf level.
const SlotsPerLevel = 3

// Shelf is a physical storage shelf, addressed by row letter and number.
// The (row, number) pair is unique across the site.
type Shelf struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Row       string     `gorm:"column:row;uniqueIndex:idx_shelf_row_number;size:8;not null" json:"row"`
	Number    int        `gorm:"uniqueIndex:idx_shelf_row_number;not null" json:"number"`
	Color     string     `gorm:"size:32" json:"color"`
	CreatedBy *int64     `gorm:"index" json:"created_by,omitempty"`
	Positions []Position `gorm:"foreignKey:ShelfID;constraint:OnDelete:CASCADE" json:"positions"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Position is one of the nine fixed slots on a shelf. Code is the stable
// identifier "{row}{number}-{levelCode}{slot}", e.g. "A3-H1". A position is
// occupied iff MaterialID is non-nil; the two fields are only ever flipped
// together.
type Position struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShelfID    int64  `gorm:"index:idx_position_shelf;not null" json:"shelf_id"`
	Code       string `gorm:"index:idx_position_code;size:16;not null" json:"code"`
	Level      string `gorm:"size:8;not null" json:"level"`
	Slot       int    `gorm:"not null" json:"slot"`
	Occupied   bool   `gorm:"default:false" json:"occupied"`
	MaterialID *int64 `json:"material_id"`
}
