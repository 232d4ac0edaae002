package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/examcore/config"
	"github.com/lshigami/examcore/database"
	_ "github.com/lshigami/examcore/docs"
	instructorctrl "github.com/lshigami/examcore/internal/controller/instructor"
	studentctrl "github.com/lshigami/examcore/internal/controller/student"
	"github.com/lshigami/examcore/internal/logger"
	"github.com/lshigami/examcore/internal/middleware"
	"github.com/lshigami/examcore/internal/model"
	"github.com/lshigami/examcore/internal/repository"
	"github.com/lshigami/examcore/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Engineering Exam Core API
// @version 1.0
// @description Exam attempts, automatic and manual grading, and suspicious activity logging.
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
			NewGinEngine,
			middleware.NewAuthenticator,
		),

		// Repositories
		fx.Provide(
			repository.NewQuestionRepository,
			repository.NewUserRepository,
			repository.NewAssignmentRepository,
			repository.NewResponseRepository,
			repository.NewActivityRepository,
			repository.NewExamRepository,
		),

		// Services
		fx.Provide(
			service.NewScoreConverterService,
			service.NewExamAssignmentService,
			service.NewGradingService,
			service.NewActivityService,
			service.NewExamAuthoringService,
			service.NewExamCatalogService,
		),

		// Controllers
		fx.Provide(
			studentctrl.NewExamController,
			instructorctrl.NewExamController,
		),

		fx.Invoke(ConfigureLogger),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(middleware.RegisterValidators),
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

// ConfigureLogger re-applies level and format once the .env file is read.
func ConfigureLogger(cfg *config.Config) {
	logger.Configure(cfg.Log.Level, cfg.Log.Pretty)
}

func AutoMigrateDB(db *gorm.DB) error {
	return database.AutoMigrate(db)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	auth *middleware.Authenticator,
	users repository.UserRepository,
	studentCtrl *studentctrl.ExamController,
	instructorCtrl *instructorctrl.ExamController,
) {
	api := router.Group("/api/v1", auth.RequireAuth())

	studentCtrl.RegisterRoutes(api.Group("", middleware.RequireRole(users, model.RoleStudent)))
	instructorCtrl.RegisterRoutes(api.Group("/instructor", middleware.RequireRole(users, model.RoleInstructor, model.RoleAdmin)))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Exam core API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
