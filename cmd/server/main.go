package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"likeboard/docs" // swagger docs
	"likeboard/internal/auth"
	"likeboard/internal/cache"
	"likeboard/internal/config"
	"likeboard/internal/db"
	"likeboard/internal/handler"
	"likeboard/internal/logger"
	"likeboard/internal/repository"
	"likeboard/internal/router"
	"likeboard/internal/service"
)

// @title Likeboard API
// @version 1.0
// @description User accounts with JWT authentication, likes and a most-liked leaderboard.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logger.New(cfg.IsDevelopment(), cfg.LogLevel)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, log)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, log); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.WithError(err).Warn("redis unavailable, serving without cache")
	}
	cancelPing()

	// Auth components
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	userRepo := repository.NewUserRepository(gormDB, hasher)
	userService := service.NewUserService(userRepo, tokens, hasher, cacheClient, log, service.Options{
		UserCacheTTL:  cfg.CacheTTL,
		BoardCacheTTL: cfg.BoardTTL,
	})
	userHandler := handler.NewUserHandler(userService)

	e := echo.New()
	router.Register(e, log, tokens, userHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Infof("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// swaggerURL builds the docs address. host may already include a scheme.
func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/api-docs"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/api-docs"
	default:
		return "http://" + host + "/api-docs"
	}
}
