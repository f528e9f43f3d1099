package store

import (
	"context"
	"errors"
	"fmt"
	"jobtracker-backend/internal/posting"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NewRedisClient parses `redisURL` and verifies the server is reachable.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis: a url was not specified")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	client := redis.NewClient(opts)
	err = client.Ping(ctx).Err()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Redis keeps the json snapshot under a single key.
type Redis struct {
	client redis.Cmdable
	key    string
}

func NewRedis(client redis.Cmdable, key string) Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return Redis{client: client, key: key}
}

func (r Redis) Load(ctx context.Context) []posting.Posting {
	ctx, span := tracer.Start(ctx, "redis:Load", trace.WithAttributes(attribute.String("key", r.key)))
	defer span.End()

	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []posting.Posting{}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read snapshot")
		slog.ErrorContext(ctx, "failed to read snapshot from redis", "key", r.key, "err", err)
		return []posting.Posting{}
	}

	out, err := decodeSnapshot(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed snapshot")
		slog.ErrorContext(ctx, "malformed snapshot in redis, starting from empty", "key", r.key, "err", err)
		return []posting.Posting{}
	}
	return out
}

func (r Redis) Save(ctx context.Context, postings []posting.Posting) error {
	ctx, span := tracer.Start(ctx, "redis:Save", trace.WithAttributes(
		attribute.String("key", r.key),
		attribute.Int("postings", len(postings)),
	))
	defer span.End()

	data, err := encodeSnapshot(postings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode snapshot")
		return err
	}
	err = r.client.Set(ctx, r.key, data, 0).Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write snapshot")
		return err
	}
	return nil
}
