package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/policy"
	"github.com/monocle-dev/taskboard/internal/types"
	"github.com/monocle-dev/taskboard/internal/utils"
)

// Project membership is plain relational data; it grants no access.

func (h *Handler) ListMembers(ctx *gin.Context) {
	_, project, ok := h.loadProject(ctx, "id", policy.CanViewProject)

	if !ok {
		return
	}

	members, err := h.Projects.Members(ctx.Request.Context(), project.ID)

	if err != nil {
		respondError(ctx, err, "Project not found")
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponses(members))
}

func (h *Handler) AddMember(ctx *gin.Context) {
	_, project, ok := h.loadProject(ctx, "id", policy.CanManageMembers)

	if !ok {
		return
	}

	var body types.AddMemberRequest

	if !bindJSON(ctx, &body) {
		return
	}

	user, err := h.Users.FindByID(ctx.Request.Context(), body.UserID)

	if err != nil {
		respondError(ctx, err, "User not found")
		return
	}

	if err := h.Projects.AddMember(ctx.Request.Context(), project.ID, user.ID); err != nil {
		respondError(ctx, err, "Project not found")
		return
	}

	h.Hub.Refresh(project.ID, "member", user.ID)

	ctx.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (h *Handler) RemoveMember(ctx *gin.Context) {
	_, project, ok := h.loadProject(ctx, "id", policy.CanManageMembers)

	if !ok {
		return
	}

	userID, err := utils.GetIDParam(ctx, "userId")

	if err != nil {
		respondMessage(ctx, http.StatusNotFound, "Member not found")
		return
	}

	if err := h.Projects.RemoveMember(ctx.Request.Context(), project.ID, userID); err != nil {
		respondError(ctx, err, "Member not found")
		return
	}

	h.Hub.Refresh(project.ID, "member", userID)

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Member removed"})
}
