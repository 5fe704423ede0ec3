package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/config"
	"github.com/monocle-dev/taskboard/internal/handlers"
	"github.com/monocle-dev/taskboard/internal/middleware"
	"github.com/monocle-dev/taskboard/internal/models"
	"github.com/monocle-dev/taskboard/internal/realtime"
	"github.com/monocle-dev/taskboard/internal/store"
	"github.com/monocle-dev/taskboard/internal/types"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB     *gorm.DB
	Tokens *auth.TokenCodec
	Hasher auth.Hasher
	Config *config.Config
	Hub    *realtime.Hub
}

// NewRouter builds the engine with stores, services and the role set of
// every route.
func NewRouter(d Deps) *gin.Engine {
	users := store.NewUserStore(d.DB)
	revocations := store.NewRevocationStore(d.DB)

	// Only consult and fill the denylist when revocation is on.
	var (
		revoker auth.Revoker
		checker middleware.RevocationChecker
	)
	if d.Config.Auth.RevokeOnLogout {
		revoker, checker = revocations, revocations
	}

	hub := d.Hub
	if hub == nil {
		hub = realtime.NewHub()
	}

	origins := types.AllowedOrigins()

	h := &handlers.Handler{
		Auth:     auth.NewService(users, d.Hasher, d.Tokens, revoker),
		Users:    users,
		Projects: store.NewProjectStore(d.DB),
		Tasks:    store.NewTaskStore(d.DB),
		Hub:      hub,
		Cookie: handlers.CookieSettings{
			Domain: d.Config.Auth.CookieDomain,
			Secure: d.Config.Server.Production,
		},
		Origins: origins,
		Ready: func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, types.ErrorResponse{Message: "Not Found"})
	})

	protect := middleware.Authenticate(d.Tokens, users, checker)
	authorize := middleware.Authorize

	var (
		admin          = authorize(models.RoleAdmin)
		adminOrManager = authorize(models.RoleAdmin, models.RoleManager)
	)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws/:id", protect, h.WebSocket)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", protect, admin, h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/logout", h.Logout)
			authGroup.GET("/profile", protect, h.Profile)
		}

		usersGroup := api.Group("/users", protect)
		{
			usersGroup.GET("", adminOrManager, h.ListUsers)
			usersGroup.PUT("/:id", admin, h.UpdateUser)
			usersGroup.DELETE("/:id", admin, h.DeleteUser)
		}

		projects := api.Group("/projects", protect)
		{
			projects.GET("", h.ListProjects)
			projects.POST("", adminOrManager, h.CreateProject)
			projects.GET("/:id", h.GetProject)
			projects.PUT("/:id", adminOrManager, h.UpdateProject)
			projects.DELETE("/:id", adminOrManager, h.DeleteProject)

			projects.GET("/:id/members", h.ListMembers)
			projects.POST("/:id/members", adminOrManager, h.AddMember)
			projects.DELETE("/:id/members/:userId", adminOrManager, h.RemoveMember)
		}

		tasks := api.Group("/tasks", protect)
		{
			tasks.GET("", h.ListTasks)
			tasks.POST("", adminOrManager, h.CreateTask)
			tasks.PUT("/:id", h.UpdateTask)
			tasks.DELETE("/:id", adminOrManager, h.DeleteTask)
		}
	}

	return r
}
