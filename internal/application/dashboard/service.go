package dashboard

import (
	"context"
	"encoding/json"
	"time"

	policies "tabiconst-backend/internal/application/policies/listings"
	"tabiconst-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CacheKey holds the last computed Stats as JSON.
const CacheKey = "dashboard:stats"

// Service serves dashboard statistics, caching them in Redis for TTL.
// A nil Rdb or a zero TTL disables the cache.
type Service struct {
	Source Source
	Rdb    *redis.Client
	TTL    time.Duration
}

// GetDashboardStats returns aggregate counts. Only staff may read them.
func (s *Service) GetDashboardStats(ctx context.Context, actor *domain.Actor) (*Stats, error) {
	if err := policies.CanViewDashboard(actor); err != nil {
		return nil, err
	}
	if cached := s.cached(ctx); cached != nil {
		return cached, nil
	}
	stats, err := s.Source.Collect(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, stats)
	return stats, nil
}

// Invalidate drops the cached value so the next read recomputes it. It is a
// no-op on a nil Service.
func (s *Service) Invalidate(ctx context.Context) {
	if s == nil || s.Rdb == nil {
		return
	}
	if err := s.Rdb.Del(ctx, CacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("dashboard cache invalidate failed")
	}
}

func (s *Service) cached(ctx context.Context) *Stats {
	if s.Rdb == nil || s.TTL <= 0 {
		return nil
	}
	raw, err := s.Rdb.Get(ctx, CacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("dashboard cache read failed")
		}
		return nil
	}
	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		log.Warn().Err(err).Msg("dashboard cache entry unreadable")
		return nil
	}
	return &stats
}

func (s *Service) store(ctx context.Context, stats *Stats) {
	if s.Rdb == nil || s.TTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.Rdb.Set(ctx, CacheKey, raw, s.TTL).Err(); err != nil {
		log.Warn().Err(err).Msg("dashboard cache write failed")
	}
}
