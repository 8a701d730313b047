package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/jlpt-assessment/config"
	"github.com/lshigami/jlpt-assessment/database"
	_ "github.com/lshigami/jlpt-assessment/docs"
	adminctrl "github.com/lshigami/jlpt-assessment/internal/controller/admin"
	userctrl "github.com/lshigami/jlpt-assessment/internal/controller/user"
	"github.com/lshigami/jlpt-assessment/internal/localization"
	"github.com/lshigami/jlpt-assessment/internal/logger"
	"github.com/lshigami/jlpt-assessment/internal/middleware"
	"github.com/lshigami/jlpt-assessment/internal/observability"
	"github.com/lshigami/jlpt-assessment/internal/repository"
	"github.com/lshigami/jlpt-assessment/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title JLPT Assessment API
// @version 1.0
// @description Test composition, question sampling and test-taking sessions for JLPT practice.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			observability.NewTracerProvider,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewTestRepository,
			repository.NewQuestionSetRepository,
			repository.NewContentPool,
			repository.NewEntitlementRepository,
			repository.NewAttemptRepository,
			repository.NewTranslationRepository,
		),

		fx.Provide(
			localization.NewDBResolver,
			NewLocalizer,
			service.NewRandFactory,
		),

		fx.Provide(
			service.NewAdminTestService,
			service.NewSessionService,
			service.NewEntitlementService,
		),

		fx.Provide(
			adminctrl.NewAdminTestController,
			userctrl.NewUserTestController,
		),

		fx.Invoke(MigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

// NewLocalizer puts the Redis read-through cache in front of the
// translation table when REDIS_ADDR is set.
func NewLocalizer(lc fx.Lifecycle, cfg *config.Config, db *localization.DBResolver) *localization.Localizer {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, translations are read from the database on every lookup")
		return localization.NewLocalizer(db, db)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, translation lookups fall through to the database")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})
	return localization.NewLocalizer(localization.NewCachedResolver(db, rdb, cfg.Localization.CacheTTL), db)
}

func NewGinEngine(cfg *config.Config, tp *sdktrace.TracerProvider) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("request_id", param.Request.Header.Get(middleware.RequestIDHeader)).
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())
	r.Use(observability.Middleware(tp, cfg.Tracing.ServiceName))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return r
}

// RegisterRoutes mounts the API on router. Split out of the server hook so
// handler tests can build the same routing.
func RegisterRoutes(
	router *gin.Engine,
	jwtSecret string,
	adminTestCtrl *adminctrl.AdminTestController,
	userTestCtrl *userctrl.UserTestController,
) {
	api := router.Group("/api/v1", middleware.Authenticate(jwtSecret))

	adminAPIGroup := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin, middleware.RoleAuthor))
	{
		testsAdminGroup := adminAPIGroup.Group("/tests")
		testsAdminGroup.POST("", adminTestCtrl.CreateTest)
		testsAdminGroup.GET("/:id", adminTestCtrl.GetTest)
		testsAdminGroup.PUT("/:id", adminTestCtrl.UpdateTest)
		testsAdminGroup.PATCH("/:id/status", adminTestCtrl.UpdateStatus)
		testsAdminGroup.DELETE("/:id", adminTestCtrl.DeleteTest)
		testsAdminGroup.POST("/:id/testsets", adminTestCtrl.AttachTestSets)
		testsAdminGroup.DELETE("/:id/testsets/:setId", adminTestCtrl.DetachTestSet)
	}

	userAPIGroup := api.Group("/test/:id")
	{
		userAPIGroup.GET("/placement-questions", userTestCtrl.GetPlacementQuestions)
		userAPIGroup.GET("/lesson-review-questions", userTestCtrl.GetLessonReviewQuestions)
		userAPIGroup.GET("/questions-by-level", userTestCtrl.GetQuestionsByLevel)
		userAPIGroup.POST("/quota/consume", userTestCtrl.ConsumeQuota)
	}
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminTestCtrl *adminctrl.AdminTestController,
	userTestCtrl *userctrl.UserTestController,
) {
	RegisterRoutes(router, cfg.Auth.JWTSecret, adminTestCtrl, userTestCtrl)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("JLPT assessment API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			return server.Shutdown(ctx)
		},
	})
}

func MigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
