package models

import "strings"

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	IsStaff      bool   `gorm:"default:false" json:"is_staff"`
	IsSuperuser  bool   `gorm:"default:false" json:"is_superuser"`
}

func (User) TableName() string {
	return "users"
}

// NormalizeEmail lowercases and trims an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
