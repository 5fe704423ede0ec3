package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/middleware"
	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/types"
	"github.com/monocle-dev/taskboard/internal/utils"
)

func (h *Handler) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.SessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.Cookie.Domain,
		MaxAge:   maxAge,
		Secure:   h.Cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Register creates an account. Only reachable by Admins.
func (h *Handler) Register(ctx *gin.Context) {
	var body types.RegisterRequest

	if !bindJSON(ctx, &body) {
		return
	}

	role, err := models.ParseRole(body.Role)

	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, "Invalid role")
		return
	}

	user, err := h.Auth.IssueCredential(ctx.Request.Context(), body.Name, body.Email, body.Password, role)

	if err != nil {
		respondError(ctx, err, "User not found")
		return
	}

	ctx.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (h *Handler) Login(ctx *gin.Context) {
	var body types.LoginRequest

	if !bindJSON(ctx, &body) {
		return
	}

	session, err := h.Auth.Authenticate(ctx.Request.Context(), body.Email, body.Password)

	if err != nil {
		respondError(ctx, err, "User not found")
		return
	}

	h.setSessionCookie(ctx, session.Token, int(h.Auth.Tokens().TTL().Seconds()))

	ctx.JSON(http.StatusOK, types.LoginResponse{
		UserResponse: types.NewUserResponse(session.User),
		Token:        session.Token,
	})
}

// Logout always clears the cookie, even when the presented token is expired
// or invalid. A still-valid token is revoked when revocation is enabled;
// otherwise it stays usable until expiry.
func (h *Handler) Logout(ctx *gin.Context) {
	h.setSessionCookie(ctx, "", -1)

	if token := middleware.TokenFromRequest(ctx.Request); token != "" {
		if claims, err := h.Auth.Tokens().Verify(token); err == nil {
			if err := h.Auth.EndSession(ctx.Request.Context(), claims); err != nil {
				respondError(ctx, err, "Session not found")
				return
			}
		}
	}

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Logged out successfully"})
}

func (h *Handler) Profile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondMessage(ctx, http.StatusUnauthorized, "Not authorized")
		return
	}

	user, err := h.Auth.CurrentProfile(ctx.Request.Context(), currentUser.ID)

	if err != nil {
		respondError(ctx, err, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}
