package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-dashboard-api/api/swagger"
	"github.com/noah-isme/school-dashboard-api/internal/handler"
	"github.com/noah-isme/school-dashboard-api/internal/middleware"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
	"github.com/noah-isme/school-dashboard-api/internal/service"
	"github.com/noah-isme/school-dashboard-api/pkg/config"
	"github.com/noah-isme/school-dashboard-api/pkg/database"
	"github.com/noah-isme/school-dashboard-api/pkg/jobs"
	"github.com/noah-isme/school-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-dashboard-api/pkg/middleware/requestid"
)

// @title School Dashboard API
// @version 1.0.0
// @description Role-aware attendance reporting and weekly lesson calendars
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	loc := cfg.Attendance.Location()

	attendanceRepo := repository.NewAttendanceRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	userRepo := repository.NewUserRepository(db)

	cleanupWorker := service.NewCleanupWorker(attendanceRepo, metricsSvc, logr.Named("cleanup"))
	queue := jobs.NewQueue("attendance", cleanupWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Attendance.JobWorkers,
		MaxRetries: cfg.Attendance.JobRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr.Named("jobs"),
		OnResult:   metricsSvc.ObserveJob,
	})
	queue.Start(ctx)
	defer queue.Stop()

	var dispatcher jobs.Dispatcher = queue
	if cfg.Redis.Enabled {
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, jobs stay in-process", zap.Error(err))
		} else {
			defer client.Close()
			feed := jobs.NewRedisFeed(client, cfg.Attendance.QueueKey, logr.Named("jobs"))
			go feed.Forward(ctx, queue)
			dispatcher = feed
		}
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	reportSvc := service.NewAttendanceReportService(attendanceRepo, studentRepo, metricsSvc, validate, logr, loc)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, lessonRepo, studentRepo, dispatcher, metricsSvc, validate, logr, service.AttendanceServiceConfig{
		Retention: cfg.Attendance.Retention,
	})
	scheduleSvc := service.NewScheduleService(lessonRepo, schoolRepo, validate, logr, loc)

	go runCleanupTicker(ctx, attendanceSvc, cfg.Attendance.CleanupInterval, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Auth:             handler.NewAuthHandler(authSvc),
		AttendanceReport: handler.NewAttendanceReportHandler(reportSvc, loc),
		Attendance:       handler.NewAttendanceHandler(attendanceSvc, loc),
		Schedule:         handler.NewScheduleHandler(scheduleSvc),
		Metrics:          handler.NewMetricsHandler(metricsSvc, db),
	}, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func runCleanupTicker(ctx context.Context, svc *service.AttendanceService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.ScheduleCleanup(ctx, "scheduler"); err != nil {
				logr.Warn("scheduled attendance cleanup not queued", zap.Error(err))
			}
		}
	}
}
