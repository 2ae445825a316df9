package app

import (
	"context"
	"errors"

	"github.com/MarcoTuMD/Template-Admin/internal/config"
	"github.com/MarcoTuMD/Template-Admin/internal/db"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"
	"github.com/MarcoTuMD/Template-Admin/internal/redis"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})

	return &Infra{
		DB:    database,
		Redis: redisClient,
	}, nil
}

func (i *Infra) Close() error {
	return errors.Join(i.Redis.Close(), i.DB.Close())
}
