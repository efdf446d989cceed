package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"likeboard/internal/auth"
	"likeboard/internal/cache"
	"likeboard/internal/config"
	"likeboard/internal/db"
	"likeboard/internal/logger"
	"likeboard/internal/repository"
	"likeboard/internal/seed"
	"likeboard/internal/service"
)

func main() {
	file := flag.String("file", "", "JSON fixture with users and likes (built-in set when empty)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	log.Info("Starting seed script...")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fixture := &seed.Default
	if *file != "" {
		fh, err := os.Open(*file)
		if err != nil {
			log.Fatalf("Failed to open fixture: %v", err)
		}
		fixture, err = seed.Decode(fh)
		fh.Close()
		if err != nil {
			log.Fatalf("Failed to read fixture: %v", err)
		}
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	repo := repository.NewUserRepository(gormDB, hasher)
	// shares the server's cache so seeded likes invalidate its entries
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	svc := service.NewUserService(repo, tokens, hasher, cacheClient, log, service.Options{
		UserCacheTTL:  cfg.CacheTTL,
		BoardCacheTTL: cfg.BoardTTL,
	})

	res, err := seed.Run(context.Background(), svc, fixture, log)
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	log.WithFields(logrus.Fields{
		"created":  res.Created,
		"existing": res.Existing,
		"likes":    res.Likes,
		"skipped":  res.Skipped,
	}).Info("Seeding completed")
}
