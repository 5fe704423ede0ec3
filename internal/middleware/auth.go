package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/store"
	"github.com/monocle-dev/taskboard/internal/types"
)

// UserLookup resolves the token subject to a live account.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RevocationChecker reports logged-out token ids.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenFromRequest returns the session token, preferring the cookie over an
// Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(types.SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	return ""
}

// Authenticate rejects the request with 401 unless it carries a valid,
// unexpired, unrevoked token for an existing user. The resolved principal is
// stored under types.ContextUserKey.
func Authenticate(codec *auth.TokenCodec, users UserLookup, revoked RevocationChecker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := TokenFromRequest(ctx.Request)

		if tokenString == "" {
			abortUnauthenticated(ctx, "Not authorized, no token")
			return
		}

		claims, err := codec.Verify(tokenString)

		if err != nil {
			abortUnauthenticated(ctx, "Not authorized, token failed")
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(ctx.Request.Context(), claims.ID)

			if err != nil {
				log.Printf("Failed to check token revocation: %v", err)
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Message: "Server Error"})
				return
			}

			if isRevoked {
				abortUnauthenticated(ctx, "Not authorized, token revoked")
				return
			}
		}

		user, err := users.FindByID(ctx.Request.Context(), claims.UserID)

		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				abortUnauthenticated(ctx, "Not authorized, user not found")
				return
			}
			log.Printf("Database error when resolving token subject: %v", err)
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Message: "Server Error"})
			return
		}

		ctx.Set(types.ContextUserKey, auth.Principal{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Role:    user.Role,
			Session: claims,
		})
		ctx.Next()
	}
}

// Authorize rejects with 403 unless the authenticated caller holds one of
// roles. It must run after Authenticate.
func Authorize(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(ctx *gin.Context) {
		v, exists := ctx.Get(types.ContextUserKey)
		p, ok := v.(auth.Principal)

		if !exists || !ok {
			abortUnauthenticated(ctx, "Not authorized")
			return
		}

		if _, ok := allowed[p.Role]; !ok {
			ctx.AbortWithStatusJSON(http.StatusForbidden, types.ErrorResponse{
				Message: "User role " + string(p.Role) + " is not authorized to access this route",
			})
			return
		}

		ctx.Next()
	}
}

func abortUnauthenticated(ctx *gin.Context, msg string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Message: msg})
}
