package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReportRepo struct {
	overview      Overview
	products      []TopProduct
	trend         []MonthlySummary
	overviewCalls int
	productCalls  int
}

func (m *mockReportRepo) Overview(ctx context.Context, ownerID int64, since time.Time) (Overview, error) {
	m.overviewCalls++
	return m.overview, nil
}

func (m *mockReportRepo) TopProducts(ctx context.Context, ownerID int64, since time.Time, limit int) ([]TopProduct, error) {
	m.productCalls++
	return m.products, nil
}

func (m *mockReportRepo) MonthlyTrend(ctx context.Context, ownerID int64, months int) ([]MonthlySummary, error) {
	return m.trend, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client, time.Minute)
}

func TestOverviewRejectsUnknownPeriod(t *testing.T) {
	svc := NewService(&mockReportRepo{}, nil)
	_, err := svc.Overview(context.Background(), 1, Period("decade"))
	assert.Error(t, err)
}

func TestOverviewCachesPerPeriod(t *testing.T) {
	repo := &mockReportRepo{overview: Overview{TotalRevenue: 100, TransactionCount: 4}}
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()

	first, err := svc.Overview(ctx, 1, PeriodMonth)
	require.NoError(t, err)
	second, err := svc.Overview(ctx, 1, PeriodMonth)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.overviewCalls)

	// A different period is a different key.
	_, err = svc.Overview(ctx, 1, PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.overviewCalls)
}

func TestBumpInvalidatesCachedAggregates(t *testing.T) {
	repo := &mockReportRepo{products: []TopProduct{{ItemID: 1, ItemName: "Mug", TotalRevenue: 50}}}
	cache := newTestCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	_, err := svc.TopProducts(ctx, 1, PeriodMonth)
	require.NoError(t, err)
	_, err = svc.TopProducts(ctx, 1, PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.productCalls)

	require.NoError(t, cache.Bump(ctx))

	_, err = svc.TopProducts(ctx, 1, PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.productCalls)
}

func TestTopProductsRankingIsDeterministic(t *testing.T) {
	repo := &mockReportRepo{products: []TopProduct{
		{ItemID: 9, ItemName: "Straw", TotalRevenue: 30, TotalQuantity: 3},
		{ItemID: 4, ItemName: "Mug", TotalRevenue: 50, TotalQuantity: 5},
		{ItemID: 2, ItemName: "Cap", TotalRevenue: 50, TotalQuantity: 5},
		{ItemID: 7, ItemName: "Pin", TotalRevenue: 50, TotalQuantity: 8},
	}}
	svc := NewService(repo, nil)

	got, err := svc.TopProducts(context.Background(), 1, PeriodMonth)
	require.NoError(t, err)

	// Revenue first, then quantity, then item id break the remaining tie.
	ids := make([]int64, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ItemID)
	}
	assert.Equal(t, []int64{7, 2, 4, 9}, ids)
}

func TestNilCacheFallsThroughToRepo(t *testing.T) {
	repo := &mockReportRepo{overview: Overview{TotalRevenue: 10}}
	svc := NewService(repo, nil)
	ctx := context.Background()

	overview, err := svc.Overview(ctx, 1, PeriodYear)
	require.NoError(t, err)
	assert.Equal(t, 10.0, overview.TotalRevenue)

	_, err = svc.Overview(ctx, 1, PeriodYear)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.overviewCalls)
}
