package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/handler"
	"github.com/stemsi/mockprep-backend/internal/middleware"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/response"
	"github.com/stemsi/mockprep-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Session  *handler.SessionHandler
	Progress *handler.ProgressHandler
	Question *handler.QuestionHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))

	// ─── 2. Catalog & Syllabus ─────────────────────────────────────────
	// Every catalog view carries the caller's progress, so none is cacheable.
	catalog := api.Group("")
	catalog.Use(middleware.NoStore())
	{
		catalog.GET("/exams", handlers.Catalog.ListExams)
		catalog.GET("/exams/:exam_id", handlers.Catalog.GetExam)
		catalog.GET("/exams/:exam_id/subjects/:subject_id/mocks", handlers.Catalog.ListMocks)
		catalog.GET("/targets/next", handlers.Catalog.NextTarget)
	}
	api.POST("/subjects/:subject_id/topics/toggle", handlers.Catalog.ToggleTopic)

	// ─── 3. Mock Sessions ──────────────────────────────────────────────
	sessions := api.Group("/sessions")
	sessions.Use(middleware.NoStore())
	{
		sessions.POST("", handlers.Session.Start)
		sessions.GET("/:id", handlers.Session.Get)
		sessions.GET("/:id/paper", handlers.Session.Paper)
		sessions.PUT("/:id/answer", handlers.Session.SelectAnswer)
		sessions.POST("/:id/goto", handlers.Session.GoTo)
		sessions.POST("/:id/next", handlers.Session.Next)
		sessions.POST("/:id/previous", handlers.Session.Previous)
		sessions.POST("/:id/finish", handlers.Session.Finish)
		sessions.DELETE("/:id", handlers.Session.Abandon)
		sessions.GET("/:id/review", handlers.Session.Review)
	}

	// ─── 4. Progress ───────────────────────────────────────────────────
	progress := api.Group("/progress")
	progress.Use(middleware.NoStore())
	{
		progress.GET("", handlers.Progress.GetProgress)
		progress.GET("/mocks/:mock_id", handlers.Progress.GetMockProgress)
	}

	// ─── 5. Admin (read-only question bank) ────────────────────────────
	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/questions", handlers.Question.ListQuestions)
	}

	// ─── 6. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/sessions/:id/stream", handlers.WS.SessionStream)
	}

	return router
}
