package models

import "time"

// ProjectMember is the join row between projects and their member users.
// Membership carries no access rights.
type ProjectMember struct {
	ProjectID string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
}
