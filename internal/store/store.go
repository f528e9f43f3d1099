package store

import (
	"context"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/configutil/dbconfig"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("jobtracker/store")

const (
	BackendFile  = "file"
	BackendSQL   = "sql"
	BackendRedis = "redis"
)

const (
	DefaultPath     = "data/jobs.json"
	DefaultRedisKey = "jobtracker:snapshot"
)

// Store holds the snapshot of the previous run.
type Store interface {
	// Load never fails, a snapshot that cannot be read is empty.
	Load(ctx context.Context) []posting.Posting
	// Save replaces the snapshot with `postings`.
	Save(ctx context.Context, postings []posting.Posting) error
}

type RedisConfig struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type Config struct {
	// one of file, sql or redis, defaults to file
	Backend string          `json:"backend"`
	Path    string          `json:"path"`
	DB      dbconfig.Config `json:"db"`
	Redis   RedisConfig     `json:"redis"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Path:    DefaultPath,
		Redis:   RedisConfig{Key: DefaultRedisKey},
	}
}

// Open returns the configured backend and a function that releases it.
func Open(ctx context.Context, config Config) (Store, func() error, error) {
	switch config.Backend {
	case "", BackendFile:
		path := config.Path
		if path == "" {
			path = DefaultPath
		}
		return NewFile(path), func() error { return nil }, nil
	case BackendSQL:
		db, err := config.DB.OpenDB()
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		s, err := NewSQL(ctx, db, config.DB)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil
	case BackendRedis:
		client, err := NewRedisClient(ctx, config.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return NewRedis(client, config.Redis.Key), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend '%s'", config.Backend)
	}
}
