package server

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/auth"
	"github.com/librescript/backend/internal/config"
	"github.com/librescript/backend/internal/handlers"
	"github.com/librescript/backend/internal/middleware"
)

type Server struct {
	cfg     config.Config
	handler *handlers.Handler
	issuer  *auth.Issuer
	log     *zap.Logger
}

func New(cfg config.Config, handler *handlers.Handler, issuer *auth.Issuer, log *zap.Logger) *Server {
	return &Server{cfg: cfg, handler: handler, issuer: issuer, log: log}
}

// NewServer creates and configures a new HTTP server
func (s *Server) NewServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.cfg.AITimeout + 30*time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	gin.SetMode(s.cfg.GinMode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(ginzap.Ginzap(s.log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(s.log, true))
	r.Use(cors.New(s.corsConfig()))

	h := s.handler
	requireAuth := middleware.RequireAuth(s.issuer)
	limited := middleware.RateLimit(s.cfg.RateLimitPerMinute)

	api := r.Group("/api")
	{
		health := api.Group("/health")
		health.GET("", h.Health.Health)
		health.GET("/ready", h.Health.Ready)

		user := api.Group("/user")
		user.POST("/register", limited, h.Auth.Register)
		user.POST("/login", limited, h.Auth.Login)
		user.POST("/authenticate", h.Auth.Authenticate)
		user.GET("/get-user/id/:id", h.User.GetByID)
		user.GET("/get-user/username/:username", h.User.GetByUsername)
		user.GET("/profile", requireAuth, h.User.GetProfile)
		user.PUT("/profile", requireAuth, h.User.UpdateProfile)
		user.GET("/posts", requireAuth, h.User.GetPosts)

		post := api.Group("/post")
		post.GET("", h.Post.GetPosts)
		post.GET("/:id", middleware.OptionalAuth(s.issuer), h.Post.GetPost)
		post.POST("", requireAuth, h.Post.CreatePost)
		post.PUT("/:id", requireAuth, h.Post.UpdatePost)
		post.POST("/:id/upvote", requireAuth, h.Post.Upvote)
		post.POST("/:id/downvote", requireAuth, h.Post.Downvote)
		post.PUT("/:id/status", requireAuth, h.Post.UpdateStatus)
		post.DELETE("/:id", requireAuth, h.Post.DeletePost)

		comment := api.Group("/comment")
		comment.GET("", h.Comment.GetComments)
		comment.GET("/post/:postId", h.Comment.GetPostComments)
		comment.GET("/post/:postId/count", h.Comment.CountPostComments)
		comment.GET("/:id", h.Comment.GetComment)
		comment.GET("/:id/replies", h.Comment.GetReplies)
		comment.POST("", requireAuth, h.Comment.CreateComment)
		comment.POST("/:id/replies", requireAuth, h.Comment.CreateReply)
		comment.PUT("/:id", requireAuth, h.Comment.UpdateComment)
		comment.DELETE("/:id", requireAuth, h.Comment.DeleteComment)

		category := api.Group("/category")
		category.GET("", h.Category.GetCategories)
		category.GET("/:id", h.Category.GetCategory)
		category.POST("", requireAuth, h.Category.CreateCategory)
		category.PUT("/:id", requireAuth, h.Category.UpdateCategory)
		category.DELETE("/:id", requireAuth, h.Category.DeleteCategory)

		verification := api.Group("/verification", requireAuth)
		verification.GET("/status", h.Verification.Status)
		verification.POST("/send-code", h.Verification.SendCode)
		verification.POST("/verify", h.Verification.Verify)

		aiGroup := api.Group("/ai")
		aiGroup.GET("/status", h.Ai.Status)
		aiGroup.GET("/health", h.Ai.Health)
		aiGroup.POST("/generate", requireAuth, h.Ai.Generate)
		aiGroup.POST("/reload", requireAuth, h.Ai.Reload)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Location", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(s.cfg.AllowedOrigins) == 0 || slices.Contains(s.cfg.AllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = s.cfg.AllowedOrigins
	cfg.AllowCredentials = true
	return cfg
}
