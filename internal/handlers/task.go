package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/policy"
	"github.com/monocle-dev/taskboard/internal/types"
	"github.com/monocle-dev/taskboard/internal/utils"
	"gorm.io/datatypes"
)

func (h *Handler) CreateTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := policy.CanCreateTask(currentUser); err != nil {
		respondError(ctx, err, "")
		return
	}

	var body types.CreateTaskRequest

	if !bindJSON(ctx, &body) {
		return
	}

	task := models.Task{
		Title:       strings.TrimSpace(body.Title),
		Description: body.Description,
		Status:      models.TaskTodo,
	}

	if task.Title == "" {
		respondMessage(ctx, http.StatusBadRequest, "Task title is required")
		return
	}

	if body.Status != "" {
		status, err := models.ParseTaskStatus(body.Status)
		if err != nil {
			respondMessage(ctx, http.StatusBadRequest, "Invalid task status")
			return
		}
		task.Status = status
	}

	if body.DueDate != "" {
		due, err := parseDate(body.DueDate)
		if err != nil {
			respondError(ctx, err, "")
			return
		}
		task.DueDate = due
	}

	reqCtx := ctx.Request.Context()

	project, err := h.Projects.FindByID(reqCtx, body.ProjectID)

	if err != nil {
		respondError(ctx, err, "Project not found")
		return
	}

	task.ProjectID = project.ID
	task.Project = project

	if body.AssignedTo != nil && *body.AssignedTo != "" {
		assignee, err := h.Users.FindByID(reqCtx, *body.AssignedTo)
		if err != nil {
			respondError(ctx, err, "Assigned user not found")
			return
		}
		task.AssignedTo = &assignee.ID
		task.Assignee = assignee
	}

	if err := h.Tasks.Create(reqCtx, &task); err != nil {
		respondError(ctx, err, "")
		return
	}

	h.Hub.Refresh(task.ProjectID, "task", task.ID)

	ctx.JSON(http.StatusCreated, types.NewTaskResponse(&task))
}

// ListTasks lists tasks, optionally for one project. Users only ever get
// the tasks assigned to them.
func (h *Handler) ListTasks(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	filter, err := policy.TaskScope(currentUser, strings.TrimSpace(ctx.Query("projectId")))

	if err != nil {
		respondError(ctx, err, "")
		return
	}

	tasks, err := h.Tasks.List(ctx.Request.Context(), filter)

	if err != nil {
		respondError(ctx, err, "")
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponses(tasks))
}

func (h *Handler) UpdateTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	taskID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		respondMessage(ctx, http.StatusNotFound, "Task not found")
		return
	}

	reqCtx := ctx.Request.Context()

	task, err := h.Tasks.FindByID(reqCtx, taskID)

	if err != nil {
		respondError(ctx, err, "Task not found")
		return
	}

	var body types.UpdateTaskRequest

	if !bindJSON(ctx, &body) {
		return
	}

	requested, fieldErrs := taskPatch(body)

	patch, err := policy.MaskTaskPatch(currentUser, task, requested)

	if err != nil {
		respondError(ctx, err, "Task not found")
		return
	}

	// Invalid values only matter for fields the caller may actually change.
	for _, field := range []string{"title", "status", "dueDate", "assignedTo"} {
		if ferr, bad := fieldErrs[field]; bad && patch.Has(field) {
			respondError(ctx, ferr, "")
			return
		}
	}

	var assignee *models.User

	if patch.AssignedTo.Set && patch.AssignedTo.Value != nil {
		assignee, err = h.Users.FindByID(reqCtx, *patch.AssignedTo.Value)
		if err != nil {
			respondError(ctx, err, "Assigned user not found")
			return
		}
	}

	patch.ApplyTo(task)

	if patch.AssignedTo.Set {
		task.Assignee = assignee
	}

	if err := h.Tasks.Save(reqCtx, task); err != nil {
		respondError(ctx, err, "Task not found")
		return
	}

	h.Hub.Refresh(task.ProjectID, "task", task.ID)

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

func (h *Handler) DeleteTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := policy.CanDeleteTask(currentUser); err != nil {
		respondError(ctx, err, "")
		return
	}

	taskID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		respondMessage(ctx, http.StatusNotFound, "Task not found")
		return
	}

	task, err := h.Tasks.FindByID(ctx.Request.Context(), taskID)

	if err != nil {
		respondError(ctx, err, "Task not found")
		return
	}

	if err := h.Tasks.Delete(ctx.Request.Context(), task.ID); err != nil {
		respondError(ctx, err, "Task not found")
		return
	}

	h.Hub.Refresh(task.ProjectID, "task", task.ID)

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Task removed"})
}

// taskPatch decodes the update body. A field with an invalid value is still
// marked as present and its error is recorded under its JSON name, so the
// caller can decide after masking whether it matters.
func taskPatch(body types.UpdateTaskRequest) (policy.TaskPatch, map[string]error) {
	var patch policy.TaskPatch

	errs := make(map[string]error)

	if body.Title != nil {
		patch.Title.Set = true
		if title := strings.TrimSpace(*body.Title); title != "" {
			patch.Title.Value = title
		} else {
			errs["title"] = types.NewValidationError("Task title cannot be empty")
		}
	}

	if body.Description != nil {
		patch.Description = policy.Set(*body.Description)
	}

	if body.Status != nil {
		patch.Status.Set = true
		if status, err := models.ParseTaskStatus(*body.Status); err == nil {
			patch.Status.Value = status
		} else {
			errs["status"] = types.NewValidationError("Invalid task status")
		}
	}

	if due, set, err := nullableString(body.DueDate, "dueDate"); set || err != nil {
		patch.DueDate.Set = true
		switch {
		case err != nil:
			errs["dueDate"] = err
		case due != nil:
			d, err := parseDate(*due)
			if err != nil {
				errs["dueDate"] = err
			}
			patch.DueDate.Value = d
		}
	}

	if assignee, set, err := nullableString(body.AssignedTo, "assignedTo"); set || err != nil {
		patch.AssignedTo.Set = true
		if err != nil {
			errs["assignedTo"] = err
		}
		patch.AssignedTo.Value = assignee
	}

	return patch, errs
}

// nullableString decodes an optional JSON string field. Absent reports
// set=false; null and "" report set=true with a nil value.
func nullableString(raw json.RawMessage, field string) (*string, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, true, nil
	}

	var s string

	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, types.NewValidationError("Invalid " + field)
	}

	s = strings.TrimSpace(s)

	if s == "" {
		return nil, true, nil
	}

	return &s, true, nil
}

// parseDate accepts YYYY-MM-DD, or a full timestamp whose date part is kept.
func parseDate(s string) (*datatypes.Date, error) {
	s = strings.TrimSpace(s)

	t, err := time.Parse(types.DateLayout, s)

	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return nil, types.NewValidationError("Invalid dueDate, expected YYYY-MM-DD")
		}
		t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}

	d := datatypes.Date(t)

	return &d, nil
}
