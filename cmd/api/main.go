package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zhpack/jobtrack/internal/config"
	"github.com/zhpack/jobtrack/internal/db"
	httpserver "github.com/zhpack/jobtrack/internal/http"
	"github.com/zhpack/jobtrack/internal/logger"
	"github.com/zhpack/jobtrack/internal/mq"
	"github.com/zhpack/jobtrack/internal/realtime"
	"github.com/zhpack/jobtrack/internal/repository"
	"github.com/zhpack/jobtrack/internal/service"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	database, err := db.New(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	if err := db.Migrate(database); err != nil {
		zlog.Fatal("auto migrate", zap.Error(err))
	}

	var publisher mq.Publisher
	rabbitPublisher, err := mq.NewRabbitPublisher(cfg.MQURL, cfg.EventExchange)
	if err != nil {
		zlog.Warn("rabbitmq unavailable, continuing without cross-instance events", zap.Error(err))
	} else {
		publisher = rabbitPublisher
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zlog.Warn("redis unavailable, continuing without lookup cache", zap.Error(err))
			rdb = nil
		}
	}

	hub := realtime.NewHub(zlog)
	feed := realtime.NewFeed(hub, publisher, zlog)

	var consumer *mq.RabbitConsumer
	if publisher != nil {
		consumer, err = mq.NewRabbitConsumer(cfg.MQURL, cfg.EventExchange, "")
		if err != nil {
			zlog.Warn("event consumer unavailable", zap.Error(err))
		} else if err := consumer.Consume(feed.HandleDelivery); err != nil {
			zlog.Warn("start event consumer", zap.Error(err))
		}
	}

	profileRepo := repository.NewProfileRepository(database)
	machineRepo := repository.NewMachineRepository(database)
	processRepo := repository.NewProcessRepository(database)
	jobRepo := repository.NewJobRepository(database)
	workRepo := repository.NewJobProcessRepository(database)

	authService := service.NewAuthService(profileRepo, rdb, cfg.JWTSecret, cfg.TokenTTL, zlog)
	submissionService := service.NewSubmissionService(profileRepo, jobRepo, processRepo, workRepo, feed, zlog)
	workService := service.NewWorkService(workRepo, jobRepo, machineRepo, feed, zlog)
	reportService := service.NewReportService(workRepo, jobRepo, processRepo)
	workerService := service.NewWorkerService(profileRepo, authService)

	apiServer := httpserver.NewServer(
		authService, submissionService, workService, reportService, workerService,
		machineRepo, processRepo, hub, zlog,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: apiServer.Engine,
	}

	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}

	if consumer != nil {
		_ = consumer.Close()
	}
	if rabbitPublisher != nil {
		_ = rabbitPublisher.Close()
	}
	zlog.Info("bye")
}

func init() {
	if mode := os.Getenv("GIN_MODE"); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
