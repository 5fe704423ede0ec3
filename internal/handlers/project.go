package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/policy"
	"github.com/monocle-dev/taskboard/internal/types"
	"github.com/monocle-dev/taskboard/internal/utils"
)

func (h *Handler) CreateProject(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := policy.CanCreateProject(currentUser); err != nil {
		respondError(ctx, err, "")
		return
	}

	var body types.CreateProjectRequest

	if !bindJSON(ctx, &body) {
		return
	}

	project := models.Project{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		Status:      models.ProjectActive,
		ManagerID:   currentUser.ID,
		Manager: &models.User{
			BaseModel: models.BaseModel{ID: currentUser.ID},
			Name:      currentUser.Name,
		},
	}

	if project.Name == "" {
		respondMessage(ctx, http.StatusBadRequest, "Project name is required")
		return
	}

	if body.Status != "" {
		status, err := models.ParseProjectStatus(body.Status)
		if err != nil {
			respondMessage(ctx, http.StatusBadRequest, "Invalid project status")
			return
		}
		project.Status = status
	}

	if err := h.Projects.Create(ctx.Request.Context(), &project); err != nil {
		respondError(ctx, err, "")
		return
	}

	ctx.JSON(http.StatusCreated, types.NewProjectResponse(&project))
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	filter, ok := policy.ProjectScope(currentUser)

	if !ok {
		ctx.JSON(http.StatusOK, []types.ProjectResponse{})
		return
	}

	projects, err := h.Projects.List(ctx.Request.Context(), filter)

	if err != nil {
		respondError(ctx, err, "")
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponses(projects))
}

// loadProject fetches the :id project and applies check for the caller.
// It writes the error response itself and returns ok=false on failure.
func (h *Handler) loadProject(ctx *gin.Context, param string, check func(auth.Principal, *models.Project) error) (auth.Principal, *models.Project, bool) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return auth.Principal{}, nil, false
	}

	projectID, err := utils.GetIDParam(ctx, param)

	if err != nil {
		respondMessage(ctx, http.StatusNotFound, "Project not found")
		return auth.Principal{}, nil, false
	}

	project, err := h.Projects.FindByID(ctx.Request.Context(), projectID)

	if err != nil {
		respondError(ctx, err, "Project not found")
		return auth.Principal{}, nil, false
	}

	if err := check(currentUser, project); err != nil {
		respondError(ctx, err, "Project not found")
		return auth.Principal{}, nil, false
	}

	return currentUser, project, true
}

func (h *Handler) GetProject(ctx *gin.Context) {
	_, project, ok := h.loadProject(ctx, "id", policy.CanViewProject)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	_, project, ok := h.loadProject(ctx, "id", policy.CanModifyProject)

	if !ok {
		return
	}

	var body types.UpdateProjectRequest

	if !bindJSON(ctx, &body) {
		return
	}

	patch, err := projectPatch(body)

	if err != nil {
		respondError(ctx, err, "")
		return
	}

	patch.ApplyTo(project)

	if err := h.Projects.Save(ctx.Request.Context(), project); err != nil {
		respondError(ctx, err, "Project not found")
		return
	}

	h.Hub.Refresh(project.ID, "project", project.ID)

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	_, project, ok := h.loadProject(ctx, "id", policy.CanModifyProject)

	if !ok {
		return
	}

	if err := h.Projects.Delete(ctx.Request.Context(), project.ID); err != nil {
		respondError(ctx, err, "Project not found")
		return
	}

	h.Hub.Refresh(project.ID, "project", project.ID)

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Project removed"})
}

func projectPatch(body types.UpdateProjectRequest) (policy.ProjectPatch, error) {
	var patch policy.ProjectPatch

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return patch, types.NewValidationError("Project name cannot be empty")
		}
		patch.Name = policy.Set(name)
	}

	if body.Description != nil {
		patch.Description = policy.Set(*body.Description)
	}

	if body.Status != nil {
		status, err := models.ParseProjectStatus(*body.Status)
		if err != nil {
			return patch, types.NewValidationError("Invalid project status")
		}
		patch.Status = policy.Set(status)
	}

	return patch, nil
}
