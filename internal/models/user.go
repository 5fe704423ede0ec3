package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of user roles. Every authorization decision
// switches over all three values.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleManager, RoleUser}

// ParseRole maps a role name to a Role. An empty name yields RoleUser.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return RoleUser, nil
	}

	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}

	return "", fmt.Errorf("invalid role %q", s)
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

type User struct {
	BaseModel

	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"size:16;not null;default:User" json:"role"`
}
