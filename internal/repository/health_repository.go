package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

const healthKeyPrefix = "source:health:"

// HealthRepository keeps the last-known fetch status per source in Redis.
// This is operational state for the /health/sources view; it never feeds
// view assembly, which always refetches.
type HealthRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewHealthRepository constructs a health repository.
func NewHealthRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *HealthRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthRepository{client: client, ttl: ttl, logger: logger}
}

// Record stores the latest observed status for one source.
func (r *HealthRepository) Record(ctx context.Context, status models.SourceStatus) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status for %s: %w", status.Source, err)
	}
	key := healthKeyPrefix + status.Source
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Get returns the last recorded status for one source.
func (r *HealthRepository) Get(ctx context.Context, source string) (*models.SourceStatus, error) {
	if r.client == nil {
		return nil, appErrors.ErrHealthMiss
	}
	key := healthKeyPrefix + source
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrHealthMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var status models.SourceStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("unmarshal status for %s: %w", source, err)
	}
	return &status, nil
}

// All returns every recorded status, skipping sources never observed.
func (r *HealthRepository) All(ctx context.Context, sources []string) ([]models.SourceStatus, error) {
	statuses := make([]models.SourceStatus, 0, len(sources))
	for _, source := range sources {
		status, err := r.Get(ctx, source)
		if err != nil {
			if appErrors.FromError(err).Code == appErrors.ErrHealthMiss.Code {
				continue
			}
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

// Close releases the underlying Redis connection if present.
func (r *HealthRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
