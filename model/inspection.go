package model

import "time"

// Inspection records one inspection pass over a set of materials.
// Materials holds snapshots of the items covered by the pass; the join rows
// survive even if a material is deleted later.
type Inspection struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date      time.Time  `gorm:"index:idx_inspection_date;not null" json:"date"`
	Inspector string     `gorm:"size:64;not null" json:"inspector"`
	Type      string     `gorm:"size:32;default:weekly" json:"type"`
	Status    string     `gorm:"size:32;default:planned" json:"status"`
	Result    string     `gorm:"type:text" json:"result"`
	Notes     string     `gorm:"type:text" json:"notes"`
	Report    string     `gorm:"type:text" json:"report"`
	Materials []Material `gorm:"many2many:inspection_materials" json:"materials"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
