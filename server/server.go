// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"chirp/cache"
	"chirp/config"
	"chirp/content"
	"chirp/database"
	"chirp/email"
	"chirp/middleware"
	"chirp/models"
	"chirp/notifications"
	"chirp/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "chirp-api"
	tokenAudience = "chirp-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	log    *slog.Logger

	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	socialRepo       repository.SocialRepository
	notificationRepo repository.NotificationRepository
	hashtagRepo      repository.HashtagRepository
	tokenRepo        repository.TokenRepository

	pipeline   *content.Pipeline
	dispatcher *notifications.Dispatcher
	notifier   *notifications.Notifier
	hub        *notifications.Hub
	mailer     *email.Mailer

	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.NewClient(cfg.RedisURL)

	server := buildServer(cfg, db, redisClient)
	server.promMiddleware = middleware.InitMetrics("chirp-api")
	return server, nil
}

// buildServer wires the repositories, pipeline and notification dispatch.
// Split out of NewServer so tests can assemble a server on an in-memory
// store.
func buildServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	logger := middleware.Logger

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	socialRepo := repository.NewSocialRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	hashtagRepo := repository.NewHashtagRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	notifier := notifications.NewNotifier(redisClient)
	dispatcher := notifications.NewDispatcher(notificationRepo, notifier, logger)
	pipeline := content.NewPipeline(db, hashtagRepo, userRepo, dispatcher, logger)

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		log:              logger,
		userRepo:         userRepo,
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		socialRepo:       socialRepo,
		notificationRepo: notificationRepo,
		hashtagRepo:      hashtagRepo,
		tokenRepo:        tokenRepo,
		pipeline:         pipeline,
		dispatcher:       dispatcher,
		notifier:         notifier,
		mailer:           email.NewMailer(cfg, logger),
	}

	if redisClient != nil {
		server.hub = notifications.NewHub()
	}

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for log correlation
	app.Use(requestid.New())

	// Distributed tracing (per-request server span, X-Trace-ID header)
	app.Use(middleware.TracingMiddleware())

	// Prometheus request metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/", s.HealthCheck)

	// Prometheus scrape endpoint
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/verify-email", middleware.RateLimit(s.redis, 10, 10*time.Minute, "verify_email"), s.VerifyEmail)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", s.AuthRequired(), s.GetMe)

	// Everything below requires an authenticated caller.
	protected := api.Group("", s.AuthRequired())

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/feed", s.GetFeed)
	posts.Get("/explore", s.GetExplore)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/repost", s.RepostPost)
	posts.Post("/:id/bookmark", s.BookmarkPost)
	posts.Delete("/:id/bookmark", s.UnbookmarkPost)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.AddComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Comment routes
	comments := protected.Group("/comments")
	comments.Post("/:id/like", s.LikeComment)
	comments.Delete("/:id/like", s.UnlikeComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// User routes
	users := protected.Group("/users")
	users.Put("/me", s.UpdateProfile)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/likes", s.GetUserLikedPosts)
	users.Get("/:id/bookmarks", s.GetUserBookmarkedPosts)
	users.Get("/:id/comments", s.GetUserComments)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Post("/:id/follow", s.FollowUser)
	users.Delete("/:id/follow", s.UnfollowUser)
	users.Get("/:username", s.GetUserProfile)

	// Search routes
	search := protected.Group("/search", middleware.RateLimit(s.redis, 30, time.Minute, "search"))
	search.Get("/", s.SearchAll)
	search.Get("/users", s.SearchUsers)
	search.Get("/posts", s.SearchPosts)
	search.Get("/hashtags", s.SearchHashtags)

	// Trending routes
	trending := protected.Group("/trending")
	trending.Get("/hashtags", s.GetTrendingHashtags)
	trending.Get("/posts", s.GetTrendingPosts)
	trending.Get("/suggestions", s.GetFollowSuggestions)

	// Notification routes
	nots := protected.Group("/notifications")
	nots.Get("/", s.GetNotifications)
	nots.Put("/read", s.MarkNotificationsRead)
	nots.Delete("/:id", s.DeleteNotification)

	// Websocket endpoint - protected by AuthRequired
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/", s.WebsocketHandler())
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"time":     time.Now(),
		},
	})
}

// AuthRequired returns the authentication middleware. The access token is
// accepted as a Bearer header, the accessToken cookie, or a token query
// parameter (for WebSockets).
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Cookies("accessToken")
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := s.parseAccessToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}

// parseAccessToken validates the signature, issuer and audience, and returns
// the subject user id.
func (s *Server) parseAccessToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, fmt.Errorf("invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, fmt.Errorf("invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user id in token")
	}
	return uint(userID), nil
}

// currentUserID returns the authenticated caller's id set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// NewApp builds the Fiber app with middleware and routes, and starts the
// Redis to hub wiring for real-time notifications.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Chirp API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Anything not already translated is an unexpected failure.
			s.log.Error("unhandled error", "path", c.Path(), "error", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire notifications hub to Redis subscriber if available
	if s.hub != nil && s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(context.Background(), s.notifier); err != nil {
				log.Printf("failed to start notification hub wiring: %v", err)
			}
		}()
	}

	return app
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down notification hub: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
