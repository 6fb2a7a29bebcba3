package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/onyxdrift/backend/internal/ai"
	"github.com/onyxdrift/backend/internal/auth"
	"github.com/onyxdrift/backend/internal/handlers"
	"github.com/onyxdrift/backend/internal/media"
	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/presence"
	"github.com/onyxdrift/backend/internal/realtime"
	"github.com/onyxdrift/backend/internal/repositories"
	"github.com/onyxdrift/backend/pkg/config"
)

// Services are the long-lived collaborators built in main
type Services struct {
	Mongo    *mongo.Database
	Postgres *gorm.DB
	Presence presence.Directory
	Tokens   *auth.JWTManager
	// Identity verifies Firebase ID tokens; nil when Firebase is not configured
	Identity auth.Verifier
	Media    *media.Store
	Captions *ai.CaptionGenerator
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config, log *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/ws"
		},
		Store: eMiddleware.NewRateLimiterMemoryStoreWithConfig(eMiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimitPerSecond),
			Burst:     cfg.RateLimitBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		},
	}))
	log.Info("global middleware configured",
		zap.Strings("cors_origins", cfg.CORSOrigins),
		zap.Float64("rate_limit", cfg.RateLimitPerSecond),
	)
}

// SetupRoutes builds repositories, prepares their indexes and tables, and
// registers every route. The returned hub must be shut down by the caller.
func SetupRoutes(ctx context.Context, e *echo.Echo, cfg *config.Config, svc Services, log *zap.Logger) (*realtime.Hub, error) {
	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(svc.Mongo)
	followRepo := repositories.NewMongoFollowRepository(svc.Mongo)
	friendshipRepo := repositories.NewMongoFriendshipRepository(svc.Mongo)
	postRepo := repositories.NewMongoPostRepository(svc.Mongo)
	likeRepo := repositories.NewMongoLikeRepository(svc.Mongo)
	commentRepo := repositories.NewMongoCommentRepository(svc.Mongo)
	storyRepo := repositories.NewStoryRepository(svc.Mongo, cfg.StoryTTL)
	conversationRepo := repositories.NewMongoConversationRepository(svc.Mongo)
	messageRepo := repositories.NewMongoMessageRepository(svc.Mongo)
	communityRepo := repositories.NewMongoCommunityRepository(svc.Mongo)
	notificationRepo := repositories.NewPostgresNotificationRepository(svc.Postgres)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for name, r := range map[string]interface {
		EnsureIndexes(context.Context) error
	}{
		"users":         userRepo,
		"posts":         postRepo,
		"stories":       storyRepo,
		"conversations": conversationRepo,
		"messages":      messageRepo,
		"communities":   communityRepo,
	} {
		if err := r.EnsureIndexes(indexCtx); err != nil {
			return nil, fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	if err := notificationRepo.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate notifications: %w", err)
	}
	log.Info("MongoDB indexes and PostgreSQL migrations ready")

	verifier := auth.Chain{svc.Tokens}
	if svc.Identity != nil {
		verifier = append(verifier, svc.Identity)
	}
	hub := realtime.NewHub(svc.Presence, messageRepo, verifier, log)
	notifications := handlers.NewNotificationSender(notificationRepo, hub, log)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", handlers.Root)

	// --- Real-time gateway; authenticates through presence-join ---
	realtime.NewHandler(ctx, hub, cfg.CORSOrigins).RegisterRoutes(e)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	handlers.NewAuthHandler(userRepo, svc.Tokens, svc.Identity, log).RegisterAuthRoutes(authGroup)

	// --- Protected routes ---
	api := e.Group("/api", middleware.BearerAuth(verifier))

	handlers.NewUserHandler(userRepo, postRepo).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(followRepo, userRepo, notifications).RegisterFollowRoutes(api)
	handlers.NewFriendshipHandler(friendshipRepo, userRepo, notifications).RegisterFriendshipRoutes(api)
	handlers.NewPostHandler(postRepo, userRepo, svc.Media, log).RegisterPostRoutes(api)
	handlers.NewFeedHandler(postRepo).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(likeRepo, notifications).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentRepo, userRepo, notifications).RegisterCommentRoutes(api)
	handlers.NewStoryHandler(storyRepo, userRepo).RegisterStoryRoutes(api)
	handlers.NewMessageHandler(conversationRepo, messageRepo, userRepo, log).RegisterMessageRoutes(api)
	handlers.NewCommunityHandler(communityRepo, messageRepo, userRepo, hub).RegisterCommunityRoutes(api)
	handlers.NewNotificationHandler(notificationRepo, userRepo).RegisterNotificationRoutes(api)
	handlers.NewUploadHandler(svc.Media).RegisterUploadRoutes(api)
	handlers.NewAIHandler(svc.Captions).RegisterAIRoutes(api)

	log.Info("all routes configured", zap.Int("routes", len(e.Routes())))
	return hub, nil
}
