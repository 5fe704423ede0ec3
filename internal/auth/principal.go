package auth

import "github.com/monocle-dev/taskboard/internal/models"

// Principal is the resolved caller attached to an authenticated request.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  models.Role

	// Session is the verified token the caller presented.
	Session *Claims
}

func (p Principal) Is(role models.Role) bool {
	return p.Role == role
}
