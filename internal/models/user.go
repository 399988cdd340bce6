package models

import "time"

// User represents an application user. Every account, category and
// transaction is owned by exactly one user.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	FirstName    string `gorm:"size:64;not null"`
	LastName     string `gorm:"size:64;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
