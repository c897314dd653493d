package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gradeflow/gradeflow-api/internal/dto"
)

// ErrAIDisabled indicates no AI provider is configured.
var ErrAIDisabled = errors.New("ai grading is not configured")

// ModelLister is the slice of the AI client the catalog needs.
type ModelLister interface {
	Models(ctx context.Context) ([]string, error)
	Provider() string
}

// ModelCatalogService lists the models offered by the configured AI provider,
// behind a short-lived redis cache so browsing the catalog does not hammer the
// provider.
type ModelCatalogService interface {
	List(ctx context.Context) (dto.ModelListResponse, error)
}

type modelCatalogService struct {
	lister   ModelLister
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewModelCatalogService constructs the catalog service. lister and cache may
// be nil; a nil cache disables caching only.
func NewModelCatalogService(lister ModelLister, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ModelCatalogService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &modelCatalogService{
		lister:   lister,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "model_catalog_service").Logger(),
	}
}

func (s *modelCatalogService) List(ctx context.Context) (dto.ModelListResponse, error) {
	if s.lister == nil {
		return dto.ModelListResponse{}, ErrAIDisabled
	}

	provider := s.lister.Provider()
	cacheKey := "ai:models:" + provider

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var names []string
			if unmarshalErr := json.Unmarshal([]byte(cached), &names); unmarshalErr == nil {
				s.logger.Debug().Str("provider", provider).Msg("model catalog cache hit")
				return dto.ModelListResponse{Provider: provider, Models: names, CacheHit: true}, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read model catalog cache")
		}
	}

	names, err := s.lister.Models(ctx)
	if err != nil {
		return dto.ModelListResponse{}, err
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(names); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store model catalog cache")
			}
		}
	}

	return dto.ModelListResponse{Provider: provider, Models: names}, nil
}
