package models

import "time"

// Base model with an auto-increment primary key and timestamps.
// Recipes are listed newest-first by ID, so IDs must stay monotonic.
type Base struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
