package main

import (
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/garagedesk/garagedesk/internal/bootstrap"
	"github.com/garagedesk/garagedesk/internal/config"
	"github.com/garagedesk/garagedesk/internal/logger"
	"github.com/garagedesk/garagedesk/internal/server"
	"github.com/garagedesk/garagedesk/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db := database.Connect()

	if err := bootstrap.Migrate(db); err != nil {
		zlog.Fatalw("migration failed", "error", err)
	}
	if err := bootstrap.SeedProblems(db); err != nil {
		zlog.Fatalw("failed to seed problem catalog", "error", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			zlog.Fatalw("failed to seed admin user", "error", err)
		}
	}

	// Redis backs token revocation. The app degrades without it: logout
	// becomes a client-side discard.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zlog.Fatalw("invalid REDIS_URL", "error", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		zlog.Warnw("REDIS_URL not set, token revocation disabled")
	}

	srv := server.NewServer(cfg, db, redisClient, zlog)
	if err := srv.Run(":" + cfg.Port); err != nil {
		zlog.Fatalw("server exited with error", "error", err)
	}
}
