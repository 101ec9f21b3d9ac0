package model

import "time"

// User represents an operator account.
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:128" json:"email"`
	PasswordHash string     `gorm:"size:64;not null" json:"-"`
	Role         string     `gorm:"size:16;default:user" json:"role"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastLoginIP  string     `gorm:"size:45" json:"last_login_ip"`
}
