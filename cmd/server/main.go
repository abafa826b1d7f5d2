package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"buildtrack/config"
	"buildtrack/internal/cache"
	"buildtrack/internal/handler"
	"buildtrack/internal/httpserver"
	"buildtrack/internal/mqhandler"
	"buildtrack/internal/repository"
	"buildtrack/internal/service"
	"buildtrack/pkg/db"
	"buildtrack/pkg/logger"
	"buildtrack/pkg/mq"
	"buildtrack/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting buildtrack server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb := redis.NewClient(cfg.Redis)
	defer rdb.Close()
	timelineCache := cache.NewTimelineCache(rdb, log)

	// MQ publisher
	log.Info("Initializing MQ publisher...")
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	phaseRepo := repository.NewPhaseRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	commentRepo := repository.NewCommentRepository(dbConn, log)
	mediaRepo := repository.NewMediaRepository(dbConn, log)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	projectService := service.NewProjectService(
		projectRepo, phaseRepo, taskRepo, taskRepo,
		mediaRepo, commentRepo, milestoneRepo,
		publisher, timelineCache, log,
	)
	taskService := service.NewTaskService(taskRepo, commentRepo, projectRepo, publisher, timelineCache, log)
	mediaService := service.NewMediaService(mediaRepo, taskRepo, publisher, timelineCache, log)

	// MQ Consumer for task.progress_updated
	log.Info("Initializing MQ consumer for task.progress_updated...",
		zap.String("queue", "task.progress_updated.q"),
		zap.String("routing_key", "task.progress_updated"),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "task.progress_updated.q", "task.progress_updated", log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	progressHandler := mqhandler.NewProgressUpdatedHandler(notificationRepo, log)
	consumer.SetHandler(progressHandler.Handle)

	go func() {
		log.Info("Starting task.progress_updated consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Progress consumer failed", zap.Error(err))
		}
	}()

	// HTTP Server
	authHandler := handler.NewAuthHandler(authService, log)
	projectHandler := handler.NewProjectHandler(projectService, userRepo, log)
	phaseHandler := handler.NewPhaseHandler(projectService, log)
	taskHandler := handler.NewTaskHandler(taskService, userRepo, log)
	milestoneHandler := handler.NewMilestoneHandler(milestoneRepo, taskRepo, timelineCache, log)
	mediaHandler := handler.NewMediaHandler(mediaService, userRepo, log)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, log)
	userHandler := handler.NewUserHandler(userRepo, log)

	router := httpserver.NewRouter(
		authHandler, projectHandler, phaseHandler, taskHandler,
		milestoneHandler, mediaHandler, notificationHandler, userHandler,
		cfg.JWT.Secret, log, dbConn, consumer,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("buildtrack server is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
		zap.String("mq_queue", "task.progress_updated.q"),
	)

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down buildtrack server gracefully...")

	consumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("buildtrack server shutdown complete")
}
