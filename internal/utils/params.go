package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetIDParam returns the named path parameter. IDs are UUID strings; a
// malformed one can never match a record.
func GetIDParam(ctx *gin.Context, name string) (string, error) {
	id := strings.TrimSpace(ctx.Param(name))

	if id == "" {
		return "", errors.New("ID not found")
	}

	if _, err := uuid.Parse(id); err != nil {
		return "", errors.New("Invalid ID")
	}

	return id, nil
}
