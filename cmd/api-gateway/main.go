package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/scheduling"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/export"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Faculty, room and section timetabling with conflict detection and slot suggestions.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	window, err := schedulingWindow(cfg.Scheduler)
	if err != nil {
		logr.Fatal("invalid scheduling window", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database, logr)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db, cfg.Database.MigrationsDir, logr)
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		logr.Info("migrations up to date", zap.Int("applied", applied))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Cache)
	if err != nil {
		logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	validate := dto.NewValidator()

	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	teacherSvc := service.NewTeacherService(teacherRepo, cacheSvc, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, courseRepo, cacheSvc, validate, logr)
	scheduleSvc := service.NewScheduleService(
		scheduleRepo,
		service.ScheduleReferences{Teachers: teacherRepo, Subjects: subjectRepo, Rooms: roomRepo, Sections: sectionRepo},
		scheduling.NewCommitter(window, cfg.Scheduler.CommitRetries),
		cacheSvc,
		metricsSvc,
		validate,
		logr,
	)
	exportSvc := service.NewExportService(scheduleSvc, window, export.NewPalette(), logr, export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, scheduleSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/metrics/summary", metricsHandler.Summary)

	teachers := api.Group("/teachers")
	teachers.GET("", teacherHandler.List)
	teachers.POST("", teacherHandler.Create)
	teachers.GET("/:id", teacherHandler.Get)
	teachers.PUT("/:id", teacherHandler.Update)
	teachers.DELETE("/:id", teacherHandler.Delete)
	teachers.POST("/:id/assign-subject", teacherHandler.AssignSubject)

	subjects := api.Group("/subjects")
	subjects.GET("", subjectHandler.List)
	subjects.POST("", subjectHandler.Create)
	subjects.GET("/:id", subjectHandler.Get)
	subjects.PUT("/:id", subjectHandler.Update)
	subjects.DELETE("/:id", subjectHandler.Delete)

	rooms := api.Group("/rooms")
	rooms.GET("", roomHandler.List)
	rooms.GET("/check", roomHandler.Check)
	rooms.POST("", roomHandler.Create)
	rooms.GET("/:id", roomHandler.Get)
	rooms.PUT("/:id", roomHandler.Update)
	rooms.DELETE("/:id", roomHandler.Delete)

	courses := api.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/check", courseHandler.Check)
	courses.POST("", courseHandler.Create)
	courses.GET("/:id", courseHandler.Get)

	sections := api.Group("/sections")
	sections.GET("", sectionHandler.List)
	sections.GET("/check", sectionHandler.Check)
	sections.POST("", sectionHandler.Create)
	sections.GET("/:id", sectionHandler.Get)
	sections.PUT("/:id", sectionHandler.Update)
	sections.DELETE("/:id", sectionHandler.Delete)

	schedules := api.Group("/schedules")
	schedules.GET("", scheduleHandler.List)
	schedules.POST("", scheduleHandler.Create)
	schedules.POST("/check", scheduleHandler.Check)
	schedules.GET("/suggestions", scheduleHandler.Suggestions)
	schedules.DELETE("/:id", scheduleHandler.Delete)

	if cfg.Exports.Enabled {
		api.GET("/exports/schedules", exportHandler.Schedules)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "window", fmt.Sprintf("%s-%s/%d", window.Start, window.End, window.Granularity))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func schedulingWindow(cfg config.SchedulerConfig) (scheduling.Window, error) {
	start, err := scheduling.ParseClock(cfg.WindowStart)
	if err != nil {
		return scheduling.Window{}, fmt.Errorf("window start: %w", err)
	}
	end, err := scheduling.ParseClock(cfg.WindowEnd)
	if err != nil {
		return scheduling.Window{}, fmt.Errorf("window end: %w", err)
	}
	w := scheduling.Window{Start: start, End: end, Granularity: cfg.GranularityMinutes}
	return w, w.Validate()
}
