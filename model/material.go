package model

import "time"

// Health states derived from a material's condition score.
const (
	StateGood    = "good"
	StateWarning = "warning"
	StateBad     = "bad"
)

// Material is a tracked inventory item. Shelf holds the human-readable shelf
// label; ShelfID/Position reference the occupied slot when the material is
// placed. State is derived from Condition and never set directly.
type Material struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	Category       string     `gorm:"index:idx_material_category;size:64;not null" json:"category"`
	Description    string     `gorm:"type:text" json:"description"`
	Notes          string     `gorm:"type:text" json:"notes"`
	EntryDate      time.Time  `gorm:"not null" json:"entry_date"`
	Condition      int        `gorm:"not null" json:"condition"`
	State          string     `gorm:"index:idx_material_state;size:16;not null" json:"state"`
	Shelf          string     `gorm:"size:100" json:"shelf"`
	ShelfID        *int64     `gorm:"index" json:"shelf_id"`
	Position       string     `gorm:"size:16" json:"position"`
	ImagePath      string     `gorm:"size:255" json:"image_path"`
	LastInspection *time.Time `json:"last_inspection"`
	NextInspection *time.Time `json:"next_inspection"`
	CreatedBy      *int64     `gorm:"index" json:"created_by,omitempty"`
	CreatedAt      time.Time  `gorm:"index:idx_material_created;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
