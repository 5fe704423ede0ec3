package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/policy"
	"github.com/monocle-dev/taskboard/internal/realtime"
	"github.com/monocle-dev/taskboard/internal/store"
	"github.com/monocle-dev/taskboard/internal/types"
)

// CookieSettings controls the session cookie.
type CookieSettings struct {
	Domain string
	Secure bool
}

// Handler carries the dependencies of every route.
type Handler struct {
	Auth     *auth.Service
	Users    *store.UserStore
	Projects *store.ProjectStore
	Tasks    *store.TaskStore
	Hub      *realtime.Hub
	Cookie   CookieSettings
	Origins  []string // browser origins allowed to open the websocket feed

	// Ready reports whether the database is reachable.
	Ready func(ctx context.Context) error
}

func respondMessage(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, types.ErrorResponse{Message: msg})
}

// respondError maps the error taxonomy onto a status and a {message} body.
// notFound is the message used for store.ErrNotFound.
func respondError(ctx *gin.Context, err error, notFound string) {
	var verr *types.ValidationError

	switch {
	case errors.As(err, &verr):
		respondMessage(ctx, http.StatusBadRequest, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		respondMessage(ctx, http.StatusNotFound, notFound)
	case errors.Is(err, policy.ErrForbidden):
		respondMessage(ctx, http.StatusForbidden, "Not authorized")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondMessage(ctx, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrDuplicateEmail):
		respondMessage(ctx, http.StatusBadRequest, "User already exists")
	case errors.Is(err, auth.ErrPasswordTooLong):
		respondMessage(ctx, http.StatusBadRequest, "Password must be at most 72 bytes")
	case errors.Is(err, auth.ErrUnauthenticated):
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
	default:
		log.Printf("%s %s failed: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
		respondMessage(ctx, http.StatusInternalServerError, "Server Error")
	}
}

func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		respondMessage(ctx, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}
