package cli

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/promile/internal/common/clock"
	"github.com/KirkDiggler/promile/internal/common/uuid"
	"github.com/KirkDiggler/promile/internal/config"
	guildRepo "github.com/KirkDiggler/promile/internal/repositories/guild"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// openRepository opens the configured backend. The returned func releases
// the repository and any client it owns.
func openRepository(cfg *config.Config, logger zerolog.Logger) (guildRepo.Repository, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		repo, err := guildRepo.NewFile(&guildRepo.FileConfig{
			Path:   cfg.DataFile,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		repo, err := guildRepo.NewRedis(&guildRepo.RedisConfig{
			RedisClient: redisClient,
			Key:         cfg.RedisKey,
			Logger:      logger,
		})
		if err != nil {
			redisClient.Close()
			return nil, nil, err
		}
		return repo, func() {
			repo.Close()
			redisClient.Close()
		}, nil

	case config.BackendSQLite:
		repo, err := guildRepo.NewSQLite(&guildRepo.SQLiteConfig{
			Path:   cfg.SQLitePath,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// openTracker opens the store and loads it into a new tracker service
func openTracker(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (tracker.Service, func(), error) {
	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}

	trackerService, err := tracker.New(&tracker.Config{
		Repository:    repo,
		Clock:         clock.New(),
		UUIDGenerator: uuid.New(),
		Logger:        logger,
	})
	if err != nil {
		closeRepo()
		return nil, nil, err
	}

	loaded, err := trackerService.Load(ctx)
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("failed to load store: %w", err)
	}

	logger.Info().
		Str("backend", cfg.StoreBackend).
		Int("guilds", loaded.Guilds).
		Bool("created", loaded.Created).
		Bool("recovered", loaded.Recovered).
		Msg("store loaded")

	return trackerService, closeRepo, nil
}
