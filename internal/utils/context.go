package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (auth.Principal, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return auth.Principal{}, fmt.Errorf("User not authenticated")
	}

	principal, ok := user.(auth.Principal)

	if !ok {
		return auth.Principal{}, fmt.Errorf("Invalid user type in context")
	}

	return principal, nil
}

func GetCurrentUserID(ctx *gin.Context) (string, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return "", err
	}

	return user.ID, nil
}
