package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"agora/internal/config"
)

// Open builds the Store selected by the database config.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Database.Backend {
	case "file":
		return NewFileStore(cfg.Database.CacheDir)
	case "bolt", "":
		return NewBoltStore(cfg.Database.Path, cfg.Database.SearchIndex)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(rdb), nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}
