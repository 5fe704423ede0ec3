package models

import (
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "Todo"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.TrimSpace(s)) {
	case TaskTodo:
		return TaskTodo, nil
	case TaskInProgress:
		return TaskInProgress, nil
	case TaskDone:
		return TaskDone, nil
	}
	return "", fmt.Errorf("invalid task status %q", s)
}

type Task struct {
	BaseModel

	Title       string          `gorm:"not null"`
	Description string          `gorm:"type:text"`
	Status      TaskStatus      `gorm:"size:16;not null;default:Todo"`
	DueDate     *datatypes.Date `gorm:"type:date"`
	ProjectID   string          `gorm:"size:36;not null;index"`
	AssignedTo  *string         `gorm:"size:36;index"`

	// Relationships
	Project  *Project `gorm:"foreignKey:ProjectID"`
	Assignee *User    `gorm:"foreignKey:AssignedTo"`
}
