package policy

import (
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/models"
	"gorm.io/datatypes"
)

// Field is a presence-aware update value: only fields with Set are written,
// so an explicit empty value clears where a missing one keeps.
type Field[T any] struct {
	Set   bool
	Value T
}

func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f Field[T]) apply(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}

type ProjectPatch struct {
	Name        Field[string]
	Description Field[string]
	Status      Field[models.ProjectStatus]
}

func (pp ProjectPatch) ApplyTo(prj *models.Project) {
	pp.Name.apply(&prj.Name)
	pp.Description.apply(&prj.Description)
	pp.Status.apply(&prj.Status)
}

type TaskPatch struct {
	Title       Field[string]
	Description Field[string]
	Status      Field[models.TaskStatus]
	DueDate     Field[*datatypes.Date]
	AssignedTo  Field[*string]
}

func (tp TaskPatch) ApplyTo(t *models.Task) {
	tp.Title.apply(&t.Title)
	tp.Description.apply(&t.Description)
	tp.Status.apply(&t.Status)
	tp.DueDate.apply(&t.DueDate)
	tp.AssignedTo.apply(&t.AssignedTo)
}

// Has reports whether the named JSON field is part of the patch.
func (tp TaskPatch) Has(field string) bool {
	switch field {
	case "title":
		return tp.Title.Set
	case "description":
		return tp.Description.Set
	case "status":
		return tp.Status.Set
	case "dueDate":
		return tp.DueDate.Set
	case "assignedTo":
		return tp.AssignedTo.Set
	}
	return false
}

// MaskTaskPatch returns the part of patch that p may apply to t. Admins and
// Managers may change every field. A User may only change the status of a
// task assigned to them; other fields are dropped without error.
func MaskTaskPatch(p auth.Principal, t *models.Task, patch TaskPatch) (TaskPatch, error) {
	switch p.Role {
	case models.RoleAdmin, models.RoleManager:
		return patch, nil
	case models.RoleUser:
		if t.AssignedTo == nil || *t.AssignedTo != p.ID {
			return TaskPatch{}, ErrForbidden
		}
		return TaskPatch{Status: patch.Status}, nil
	}
	return TaskPatch{}, ErrForbidden
}
