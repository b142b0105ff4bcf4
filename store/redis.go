package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/graphenv/types"
)

const DefaultPrefix = "graphenv:"

// RedisRecorder pushes episode summaries to a redis list per experiment
type RedisRecorder struct {
	client *redis.Client
	prefix string
}

var _ types.Recorder = &RedisRecorder{}

type Option func(*RedisRecorder)

// WithPrefix sets the key prefix of the episode lists
func WithPrefix(prefix string) Option {
	return func(r *RedisRecorder) {
		r.prefix = prefix
	}
}

func NewRedisRecorder(address, password string, db int, opts ...Option) *RedisRecorder {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisRecorderFromClient(client, opts...)
}

func NewRedisRecorderFromClient(client *redis.Client, opts ...Option) *RedisRecorder {
	r := &RedisRecorder{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRecorder) key(experiment string) string {
	return r.prefix + experiment + ":episodes"
}

func (r *RedisRecorder) Record(ctx context.Context, s *types.EpisodeSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := r.client.RPush(ctx, r.key(s.Experiment), data).Err(); err != nil {
		return fmt.Errorf("failed to push to redis: %w", err)
	}
	return nil
}

// Summaries returns the recorded summaries of an experiment in recording order
func (r *RedisRecorder) Summaries(ctx context.Context, experiment string) ([]*types.EpisodeSummary, error) {
	vals, err := r.client.LRange(ctx, r.key(experiment), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}
	summaries := make([]*types.EpisodeSummary, len(vals))
	for i, val := range vals {
		var s types.EpisodeSummary
		if err := json.Unmarshal([]byte(val), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		summaries[i] = &s
	}
	return summaries, nil
}

// Clear removes the recorded summaries of an experiment
func (r *RedisRecorder) Clear(ctx context.Context, experiment string) error {
	return r.client.Del(ctx, r.key(experiment)).Err()
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
