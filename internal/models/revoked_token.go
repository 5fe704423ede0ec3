package models

import "time"

// RevokedToken records a session token id that logout has invalidated
// before its natural expiry.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
