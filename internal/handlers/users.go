package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/policy"
	"github.com/monocle-dev/taskboard/internal/types"
	"github.com/monocle-dev/taskboard/internal/utils"
)

func (h *Handler) ListUsers(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := policy.CanListUsers(currentUser); err != nil {
		respondError(ctx, err, "")
		return
	}

	users, err := h.Users.List(ctx.Request.Context())

	if err != nil {
		respondError(ctx, err, "")
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponses(users))
}

// UpdateUser changes a user's role. An absent role leaves the user as is.
func (h *Handler) UpdateUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := policy.CanManageUsers(currentUser); err != nil {
		respondError(ctx, err, "")
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		respondMessage(ctx, http.StatusNotFound, "User not found")
		return
	}

	var body types.UpdateUserRequest

	if !bindJSON(ctx, &body) {
		return
	}

	if body.Role == nil {
		user, err := h.Users.FindByID(ctx.Request.Context(), id)
		if err != nil {
			respondError(ctx, err, "User not found")
			return
		}
		ctx.JSON(http.StatusOK, types.NewUserResponse(user))
		return
	}

	role, err := models.ParseRole(*body.Role)

	if err != nil || *body.Role == "" {
		respondMessage(ctx, http.StatusBadRequest, "Invalid role")
		return
	}

	user, err := h.Users.UpdateRole(ctx.Request.Context(), id, role)

	if err != nil {
		respondError(ctx, err, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *Handler) DeleteUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := policy.CanManageUsers(currentUser); err != nil {
		respondError(ctx, err, "")
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		respondMessage(ctx, http.StatusNotFound, "User not found")
		return
	}

	if err := h.Users.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "User removed"})
}
