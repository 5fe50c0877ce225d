package reporting

import (
	"context"
	"fmt"
	"time"
)

// RepositoryPort abstracts aggregate queries for the service.
type RepositoryPort interface {
	Overview(ctx context.Context, ownerID int64, since time.Time) (Overview, error)
	TopProducts(ctx context.Context, ownerID int64, since time.Time, limit int) ([]TopProduct, error)
	MonthlyTrend(ctx context.Context, ownerID int64, months int) ([]MonthlySummary, error)
}

// Service serves report aggregates through the versioned cache.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	now   func() time.Time
}

// NewService builds a Service. cache may be nil, which disables caching.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Overview returns the owner's sales totals for the period.
func (s *Service) Overview(ctx context.Context, ownerID int64, period Period) (Overview, error) {
	if !period.Valid() {
		return Overview{}, fmt.Errorf("reporting: unknown period %q", period)
	}
	since := period.Start(s.now())
	key, err := s.cache.BuildKey(ctx, keyOverview(ownerID, period))
	if err != nil {
		return Overview{}, err
	}
	var overview Overview
	err = s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
		return s.repo.Overview(ctx, ownerID, since)
	})
	return overview, err
}

// TopProducts returns the five best sellers for the period.
func (s *Service) TopProducts(ctx context.Context, ownerID int64, period Period) ([]TopProduct, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("reporting: unknown period %q", period)
	}
	since := period.Start(s.now())
	key, err := s.cache.BuildKey(ctx, keyTopProducts(ownerID, period))
	if err != nil {
		return nil, err
	}
	var products []TopProduct
	err = s.cache.FetchJSON(ctx, key, &products, func(ctx context.Context) (interface{}, error) {
		ranked, err := s.repo.TopProducts(ctx, ownerID, since, 5)
		if err != nil {
			return nil, err
		}
		sortTopProducts(ranked)
		return ranked, nil
	})
	return products, err
}

// MonthlyTrend returns the owner's recent months from the summary view.
func (s *Service) MonthlyTrend(ctx context.Context, ownerID int64, months int) ([]MonthlySummary, error) {
	key, err := s.cache.BuildKey(ctx, keyMonthlyTrend(ownerID, months))
	if err != nil {
		return nil, err
	}
	var trend []MonthlySummary
	err = s.cache.FetchJSON(ctx, key, &trend, func(ctx context.Context) (interface{}, error) {
		return s.repo.MonthlyTrend(ctx, ownerID, months)
	})
	return trend, err
}
