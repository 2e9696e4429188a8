package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sems_backend/internal/config"
	"sems_backend/internal/controller"
	"sems_backend/internal/middleware"
	"sems_backend/internal/repository"
	"sems_backend/internal/service"
	"sems_backend/internal/util"
	"sems_backend/pkg/configwatcher"
	"sems_backend/pkg/database"
	"sems_backend/pkg/logger"
	"sems_backend/pkg/monitoring"
	"sems_backend/pkg/security"
	"sems_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	stopWatcher     context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user           *repository.UserRepository
	subject        *repository.SubjectRepository
	section        *repository.SectionRepository
	student        *repository.StudentRepository
	exam           *repository.ExamRepository
	result         *repository.ResultRepository
	questionReport *repository.QuestionReportRepository
	importLog      *repository.ImportLogRepository
	report         *repository.ReportRepository
}

type services struct {
	auth    *service.AuthService
	storage *service.StorageService
	subject *service.SubjectService
	section *service.SectionService
	student *service.StudentService
	report  *service.ReportService
	exam    *service.ExamService
	attempt *service.AttemptService
	imports *service.ImportService
}

type controllers struct {
	auth    *controller.AuthController
	subject *controller.SubjectController
	section *controller.SectionController
	student *controller.StudentController
	exam    *controller.ExamController
	guest   *controller.GuestController
	report  *controller.ReportController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:           repository.NewUserRepository(db),
		subject:        repository.NewSubjectRepository(db),
		section:        repository.NewSectionRepository(db),
		student:        repository.NewStudentRepository(db),
		exam:           repository.NewExamRepository(db),
		result:         repository.NewResultRepository(db),
		questionReport: repository.NewQuestionReportRepository(db),
		importLog:      repository.NewImportLogRepository(db),
		report:         repository.NewReportRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(db, repos.user, repos.student, cfg)
	s.report = service.NewReportService(repos.report, rdb, time.Duration(cfg.Redis.ReportTTLSeconds)*time.Second)
	s.subject = service.NewSubjectService(repos.subject, s.report)
	s.section = service.NewSectionService(repos.section, s.report)
	s.student = service.NewStudentService(db, repos.student, repos.user, repos.section, s.report)
	s.exam = service.NewExamService(repos.exam, repos.subject, repos.student, repos.result, repos.questionReport, s.report)
	s.attempt = service.NewAttemptService(db, repos.exam, repos.student, repos.result, s.report)
	s.imports = service.NewImportService(db, repos.exam, repos.importLog, s.student, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		subject: controller.NewSubjectController(s.subject),
		section: controller.NewSectionController(s.section),
		student: controller.NewStudentController(s.student, s.imports, a.Config),
		exam:    controller.NewExamController(s.exam, s.attempt, s.imports, a.Config),
		guest:   controller.NewGuestController(s.exam, s.attempt),
		report:  controller.NewReportController(s.report),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires repositories, services and routes over already opened connections.
// rdb may be nil, in which case reports are not cached.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	gin.SetMode(ginMode(cfg.Server.Mode))
	util.RegisterJSONTagNames()

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal && cfg.Storage.LocalPath != "" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	return app
}

func ginMode(mode string) string {
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.DebugMode
	}
}

// NewApp opens the database and cache, runs startup tasks and builds the App.
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully", zap.String("mode", cfg.Server.Mode))

	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// reports fall back to uncached queries
		logger.Log.Error("Failed to initialize redis, report cache disabled", zap.Error(err))
		rdb = nil
	}

	monitoring.Init()

	app := New(cfg, db, rdb)

	if cfg.MigrateOnly {
		return app
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	if err := app.services.auth.EnsureBootstrapSupervisor(context.Background()); err != nil {
		logger.Log.Error("Failed to create bootstrap supervisor", zap.Error(err))
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})
	app.startConfigWatcher("configs")

	return app
}

func (a *App) startConfigWatcher(dir string) {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatcher = cancel
	go func() {
		err := configwatcher.WatchConfig(ctx, dir, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.stopWatcher != nil {
		a.stopWatcher()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
