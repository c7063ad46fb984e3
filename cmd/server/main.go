// Package main runs the church console HTTP server with the change stream and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/church-console/backend/config"
	"github.com/church-console/backend/internal/app"
	"github.com/church-console/backend/internal/auth"
	"github.com/church-console/backend/internal/realtime"
	"github.com/church-console/backend/pkg/queue"
	"github.com/church-console/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st, closeDB, err := app.OpenStore(ctx, cfg.Database, registry, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer closeDB()

	deps := app.Deps{
		Store:          st,
		JWT:            auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours),
		Hub:            realtime.NewHub(logger),
		Gatherer:       registry,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		ChurchName:     cfg.Reports.ChurchName,
		MaxUploadBytes: cfg.Media.MaxUploadBytes(),
		Logger:         logger,
	}

	s3Client, err := app.OpenS3(ctx, cfg.AWS, logger)
	if err != nil {
		logger.Warn("s3 disabled", zap.Error(err))
	}
	if s3Client != nil {
		deps.Files = s3Client
		deps.Signer = s3Client
	}

	var bus realtime.ChangeBus
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		instance := cfg.Server.InstanceID
		if instance == "" {
			instance = uuid.NewString()
		}
		bus = realtime.NewRedisPubSub(rdb.Client, instance, logger)
		deps.Exports = queue.NewQueue(rdb.Client, logger)
	}

	syncCtx, syncCancel := context.WithCancel(context.Background())
	defer syncCancel()
	stopSync, err := realtime.NewSync(st, deps.Hub, bus, logger).Start(syncCtx)
	if err != nil {
		logger.Fatal("change sync", zap.Error(err))
	}
	defer stopSync()

	go func() {
		loadCtx, cancel := context.WithTimeout(syncCtx, 30*time.Second)
		defer cancel()
		if err := st.FetchAll(loadCtx); err != nil {
			logger.Warn("initial load failed; clients must reload", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.NewRouter(deps),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	syncCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
