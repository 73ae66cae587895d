package cache

import (
	"context"

	"catalog_api/internal/platform/config"
	"catalog_api/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := RDB.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("Could not connect to Redis: %v", err)
	}
	logger.Info("Successfully connected to Redis at %s", config.AppConfig.RedisAddr)
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		logger.Info("Redis connection closed")
	}
}
