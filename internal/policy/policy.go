// Package policy holds the per-resource authorization rules. Access to
// projects and their tasks is scoped by ownership for Managers and by
// assignment for Users; Admins bypass instance checks.
//
// Every decision switches over all roles. An unrecognized role is denied.
package policy

import (
	"errors"

	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/store"
)

// ErrForbidden is returned for an authenticated caller acting outside its
// scope.
var ErrForbidden = errors.New("not authorized")

// ProjectScope returns the listing filter for p. ok is false when the caller
// may not list any project.
func ProjectScope(p auth.Principal) (f store.ProjectFilter, ok bool) {
	switch p.Role {
	case models.RoleAdmin:
		return store.ProjectFilter{}, true
	case models.RoleManager:
		return store.ProjectFilter{ManagerID: p.ID}, true
	case models.RoleUser:
		// Membership-based listing is not offered.
		return store.ProjectFilter{}, false
	}
	return store.ProjectFilter{}, false
}

func CanViewProject(p auth.Principal, prj *models.Project) error {
	switch p.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager:
		if prj.ManagerID == p.ID {
			return nil
		}
		return ErrForbidden
	case models.RoleUser:
		return nil
	}
	return ErrForbidden
}

func CanModifyProject(p auth.Principal, prj *models.Project) error {
	switch p.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager:
		if prj.ManagerID == p.ID {
			return nil
		}
		return ErrForbidden
	case models.RoleUser:
		return ErrForbidden
	}
	return ErrForbidden
}

// CanManageMembers follows the project mutation rule.
func CanManageMembers(p auth.Principal, prj *models.Project) error {
	return CanModifyProject(p, prj)
}

// TaskScope returns the listing filter for p. Users only ever see tasks
// assigned to them; the requested project is ignored for them.
func TaskScope(p auth.Principal, projectID string) (store.TaskFilter, error) {
	switch p.Role {
	case models.RoleAdmin, models.RoleManager:
		return store.TaskFilter{ProjectID: projectID}, nil
	case models.RoleUser:
		return store.TaskFilter{AssigneeID: p.ID}, nil
	}
	return store.TaskFilter{}, ErrForbidden
}

func CanCreateProject(p auth.Principal) error {
	switch p.Role {
	case models.RoleAdmin, models.RoleManager:
		return nil
	case models.RoleUser:
		return ErrForbidden
	}
	return ErrForbidden
}

func CanCreateTask(p auth.Principal) error {
	switch p.Role {
	case models.RoleAdmin, models.RoleManager:
		return nil
	case models.RoleUser:
		return ErrForbidden
	}
	return ErrForbidden
}

func CanDeleteTask(p auth.Principal) error {
	switch p.Role {
	case models.RoleAdmin, models.RoleManager:
		return nil
	case models.RoleUser:
		return ErrForbidden
	}
	return ErrForbidden
}

// CanManageUsers covers role changes and deletion of accounts.
func CanManageUsers(p auth.Principal) error {
	switch p.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager, models.RoleUser:
		return ErrForbidden
	}
	return ErrForbidden
}

func CanListUsers(p auth.Principal) error {
	switch p.Role {
	case models.RoleAdmin, models.RoleManager:
		return nil
	case models.RoleUser:
		return ErrForbidden
	}
	return ErrForbidden
}
