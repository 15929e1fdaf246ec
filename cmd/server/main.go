package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/drink-tracker/config"
	"github.com/d60-Lab/drink-tracker/internal/api"
	"github.com/d60-Lab/drink-tracker/internal/api/handler"
	"github.com/d60-Lab/drink-tracker/internal/cache"
	"github.com/d60-Lab/drink-tracker/internal/repository"
	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/pkg/auth"
	"github.com/d60-Lab/drink-tracker/pkg/database"
	"github.com/d60-Lab/drink-tracker/pkg/logger"
	"github.com/d60-Lab/drink-tracker/pkg/tracing"
)

// @title Drink Tracker API
// @version 1.0
// @description 记录饮酒、关注好友、接收好友饮酒通知
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	createAdmin := flag.String("create-admin", "", "create an admin user as username:password and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, follower cache disabled", zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	drinkRepo := repository.NewDrinkRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	hasher := auth.NewBcryptHasher(0)
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expire, cfg.JWT.Issuer)

	followerCache := cache.NewFollowerCache(rdb, cfg.Redis.TTL)

	userSvc := service.NewUserService(db, userRepo, followRepo, followerCache, hasher, cfg.Pagination.UserPageLimit, cfg.Pagination.SearchLimit)
	relSvc := service.NewRelationshipService(db, userRepo, followRepo, followerCache, cfg.Pagination.FollowerLimit)
	drinkSvc := service.NewDrinkService(db, drinkRepo, service.NewFanout(followRepo, notifRepo))
	notifSvc := service.NewNotificationService(notifRepo)

	if *createAdmin != "" {
		username, password, ok := strings.Cut(*createAdmin, ":")
		if !ok || username == "" || password == "" {
			logger.Fatal("-create-admin expects username:password")
		}
		u, err := userSvc.CreateAdminUser(ctx, service.UserCreate{Username: username, Password: password})
		if err != nil {
			logger.Fatal("create admin", zap.Error(err))
		}
		logger.Info("admin created", zap.Uint("id", u.ID), zap.String("username", u.Username))
		return
	}

	gin.SetMode(cfg.Server.Mode)
	h := handler.NewHandler(userSvc, relSvc, drinkSvc, notifSvc, tokens)
	router, err := api.SetupRouter(cfg, h, tokens, userSvc)
	if err != nil {
		logger.Fatal("setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("db", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
}
