package models

import (
	"fmt"
	"strings"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "Active"
	ProjectCompleted ProjectStatus = "Completed"
)

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(strings.TrimSpace(s)) {
	case ProjectActive:
		return ProjectActive, nil
	case ProjectCompleted:
		return ProjectCompleted, nil
	}
	return "", fmt.Errorf("invalid project status %q", s)
}

type Project struct {
	BaseModel

	Name        string        `gorm:"not null"`
	Description string        `gorm:"type:text"`
	Status      ProjectStatus `gorm:"size:16;not null;default:Active"`
	ManagerID   string        `gorm:"size:36;not null;index"`

	// Relationships
	Manager *User  `gorm:"foreignKey:ManagerID"`
	Members []User `gorm:"many2many:project_members"`
}
