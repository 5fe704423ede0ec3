package types

import (
	"time"

	"github.com/monocle-dev/taskboard/internal/models"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// UserResponse is the public profile of a user. It never carries the
// password hash.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// LoginResponse is the profile plus the issued token.
type LoginResponse struct {
	UserResponse
	Token string `json:"token"`
}

// Summary identifies a related record by id and name.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProjectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	ManagerID   string               `json:"managerId"`
	Manager     *Summary             `json:"manager,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *string           `json:"dueDate"`
	ProjectID   string            `json:"projectId"`
	AssignedTo  *string           `json:"assignedTo"`
	Assignee    *Summary          `json:"assignee,omitempty"`
	Project     *Summary          `json:"project,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func userSummary(u *models.User) *Summary {
	if u == nil {
		return nil
	}
	return &Summary{ID: u.ID, Name: u.Name}
}

func projectSummary(p *models.Project) *Summary {
	if p == nil {
		return nil
	}
	return &Summary{ID: p.ID, Name: p.Name}
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

func NewProjectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		ManagerID:   p.ManagerID,
		Manager:     userSummary(p.Manager),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProjectResponses(projects []models.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, NewProjectResponse(&projects[i]))
	}
	return out
}

func NewTaskResponse(t *models.Task) TaskResponse {
	var due *string
	if t.DueDate != nil {
		s := time.Time(*t.DueDate).Format(DateLayout)
		due = &s
	}

	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     due,
		ProjectID:   t.ProjectID,
		AssignedTo:  t.AssignedTo,
		Assignee:    userSummary(t.Assignee),
		Project:     projectSummary(t.Project),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTaskResponses(tasks []models.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}
