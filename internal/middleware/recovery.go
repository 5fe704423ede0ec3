package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/types"
)

// Recovery turns a panicking handler into a generic 500 without leaking
// details to the client.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		log.Printf("Recovered from panic on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, recovered)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Message: "Server Error"})
	})
}
