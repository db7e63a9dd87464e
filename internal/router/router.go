package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"group-board-api/internal/allocator"
	"group-board-api/internal/cache"
	"group-board-api/internal/handler"
	"group-board-api/internal/metrics"
	"group-board-api/internal/middleware"
	"group-board-api/internal/repository"
	"group-board-api/internal/service"
)

// Config holds everything the router needs to wire the application
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	JWTSecret      string
	BasePath       string
	AllowedOrigins []string
	CacheTTL       time.Duration
}

// Setup builds the gin engine with all routes and middleware wired
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	// Repositories
	userRepo := repository.NewUserRepository(cfg.DB)
	groupRepo := repository.NewGroupRepository(cfg.DB)
	memberRepo := repository.NewMemberRepository(cfg.DB)
	columnRepo := repository.NewColumnRepository(cfg.DB)
	cardRepo := repository.NewCardRepository(cfg.DB)
	cardTagRepo := repository.NewCardTagRepository(cfg.DB)
	userTagRepo := repository.NewUserTagRepository(cfg.DB)
	relationRepo := repository.NewUserTagRelationRepository(cfg.DB)

	// Shared infrastructure
	alloc := allocator.New(cfg.DB, cfg.Logger,
		allocator.WithRetryHook(func() { cfg.Metrics.IncrementAllocatorRetry() }))
	boardCache := cache.NewBoardCache(cfg.Redis, cfg.CacheTTL, cfg.Metrics, cfg.Logger)

	// Services
	membershipService := service.NewMembershipService(groupRepo, memberRepo)
	boardService := service.NewBoardService(columnRepo, cardRepo, memberRepo, relationRepo,
		membershipService, boardCache, cfg.Logger)
	groupService := service.NewGroupService(groupRepo, memberRepo, userRepo,
		membershipService, boardService, boardCache, cfg.Metrics, cfg.Logger)
	tagService := service.NewTagService(cardTagRepo, userTagRepo, relationRepo, userRepo, memberRepo,
		membershipService, alloc, boardCache, cfg.Metrics, cfg.Logger)
	cardService := service.NewCardService(cardRepo, columnRepo, userRepo, memberRepo,
		membershipService, tagService, alloc, boardCache, cfg.Metrics, cfg.Logger)
	columnService := service.NewColumnService(columnRepo, membershipService, boardCache, cfg.Logger)

	// Handlers
	groupHandler := handler.NewGroupHandler(groupService, boardService)
	columnHandler := handler.NewColumnHandler(columnService)
	cardHandler := handler.NewCardHandler(cardService)
	tagHandler := handler.NewTagHandler(tagService)

	// Health and metrics endpoints live at the root regardless of base path,
	// which is where the cluster probes and the Prometheus scraper look
	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	base := r.Group(cfg.BasePath)
	if cfg.BasePath != "" {
		base.GET("/health", healthCheck)
		base.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := base.Group("")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		groups := api.Group("/groups")
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("/:groupId", groupHandler.GetGroup)
			groups.PATCH("/:groupId", groupHandler.UpdateGroup)
			groups.DELETE("/:groupId", groupHandler.DeleteGroup)
			groups.POST("/:groupId/members", groupHandler.AddMember)
			groups.GET("/:groupId/board", groupHandler.GetBoard)

			groups.POST("/:groupId/columns", columnHandler.CreateColumn)
			groups.GET("/:groupId/columns", columnHandler.ListColumns)
			groups.PATCH("/:groupId/columns/:columnId", columnHandler.UpdateColumn)
			groups.DELETE("/:groupId/columns/:columnId", columnHandler.DeleteColumn)

			groups.POST("/:groupId/cards", cardHandler.CreateCard)
			groups.GET("/:groupId/cards", cardHandler.ListCards)
			groups.GET("/:groupId/cards/:code", cardHandler.GetCard)
			groups.PATCH("/:groupId/cards/:code", cardHandler.UpdateCard)
			groups.DELETE("/:groupId/cards/:code", cardHandler.DeleteCard)

			groups.POST("/:groupId/tags/:kind", tagHandler.CreateTag)
			groups.GET("/:groupId/tags/:kind", tagHandler.ListTags)
			groups.GET("/:groupId/tags/:kind/:code", tagHandler.GetTag)
			groups.PATCH("/:groupId/tags/:kind/:code", tagHandler.UpdateTag)
			groups.DELETE("/:groupId/tags/:kind/:code", tagHandler.DeleteTag)

			groups.POST("/:groupId/user-tags", tagHandler.CreateUserTagRelation)
			groups.DELETE("/:groupId/user-tags/:username/:code", tagHandler.DeleteUserTagRelation)
		}
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
