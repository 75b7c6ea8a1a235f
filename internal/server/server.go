package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/emilythestrangee/askme/backend/internal/auth"
	"github.com/emilythestrangee/askme/backend/internal/config"
	"github.com/emilythestrangee/askme/backend/internal/database"
	"github.com/emilythestrangee/askme/backend/internal/forum"
	"github.com/emilythestrangee/askme/backend/internal/handlers"
	"github.com/emilythestrangee/askme/backend/internal/middleware"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	tokens  *auth.Tokens
	handler *handlers.Handler
	log     zerolog.Logger
}

// New wires the forum service and handlers on top of an open database.
func New(cfg *config.Config, db database.Service, log zerolog.Logger, clock clockwork.Clock) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	svc := forum.New(db.GetDB(), forum.Options{
		MaxTags: cfg.MaxTags,
		Clock:   clock,
		Logger:  log,
	})
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL, clock)

	return &Server{
		cfg:    cfg,
		db:     db,
		tokens: tokens,
		handler: handlers.NewHandler(svc, tokens, handlers.Options{
			QuestionsPageSize: cfg.QuestionsPageSize,
			AnswersPageSize:   cfg.AnswersPageSize,
		}),
		log: log,
	}
}

// HTTPServer creates the configured http.Server.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + s.cfg.Port,
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(s.log),
		middleware.AccessLog(),
		middleware.Metrics(),
		cors.New(s.corsConfig()),
		middleware.Errors(),
		middleware.Authenticate(s.tokens),
	)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Public reads
		api.GET("/questions", s.handler.Question.GetQuestions)
		api.GET("/questions/:id", s.handler.Question.GetQuestion)
		api.GET("/questions/:id/answers", s.handler.Answer.GetAnswers)
		api.GET("/tags", s.handler.Tag.GetTags)
		api.GET("/tags/:title/questions", s.handler.Tag.GetTagQuestions)
		api.GET("/users/:id", s.handler.User.GetUserProfile)
		api.GET("/users/:id/questions", s.handler.User.GetUserQuestions)

		// Guests may answer with a display name
		api.POST("/questions/:id/answers", s.handler.Answer.CreateAnswer)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/questions", s.handler.Question.CreateQuestion)
			protected.DELETE("/questions/:id", s.handler.Question.DeleteQuestion)
			protected.POST("/questions/:id/vote", s.handler.Question.VoteQuestion)

			protected.POST("/questions/:id/answers/:answerId/correct", s.handler.Answer.MarkCorrect)
			protected.POST("/answers/:answerId/vote", s.handler.Answer.VoteAnswer)

			protected.PUT("/users/:id", s.handler.User.UpdateUserProfile)
		}
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	origins := s.cfg.CORSAllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (s *Server) health(c *gin.Context) {
	stats := s.db.Health(c.Request.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
