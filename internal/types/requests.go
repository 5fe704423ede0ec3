package types

import "encoding/json"

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Role *string `json:"role"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateProjectRequest only applies fields present in the body.
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	DueDate     string  `json:"dueDate"`
	ProjectID   string  `json:"projectId" binding:"required"`
	AssignedTo  *string `json:"assignedTo"`
}

// UpdateTaskRequest only applies fields present in the body. For the
// nullable fields, JSON null or "" clears the value.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	DueDate     json.RawMessage `json:"dueDate"`
	AssignedTo  json.RawMessage `json:"assignedTo"`
}

type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}
