package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads sales aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Overview sums the owner's sale transactions since the given instant.
// Cost is reconstructed from the item's current cost price; items deleted
// after the sale contribute zero cost but keep their revenue.
func (r *Repository) Overview(ctx context.Context, ownerID int64, since time.Time) (Overview, error) {
	var o Overview
	err := r.pool.QueryRow(ctx, `SELECT
COALESCE(SUM(t.total_amount), 0),
COALESCE(SUM(COALESCE(i.cost_price, 0) * t.quantity), 0),
COUNT(*)
FROM transactions t
LEFT JOIN inventory_items i ON i.id = t.item_id
WHERE t.owner_id = $1 AND t.transaction_type = 'sale' AND t.created_at >= $2`,
		ownerID, since).Scan(&o.TotalRevenue, &o.TotalCost, &o.TransactionCount)
	if err != nil {
		return Overview{}, err
	}
	o.GrossProfit = o.TotalRevenue - o.TotalCost
	if o.TotalRevenue > 0 {
		o.ProfitMargin = o.GrossProfit / o.TotalRevenue
	}
	return o, nil
}

// TopProducts ranks the owner's items by sale revenue since the given
// instant. Ties break on quantity sold, then on item id, so the ranking is
// deterministic across refreshes.
func (r *Repository) TopProducts(ctx context.Context, ownerID int64, since time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `SELECT
t.item_id,
COALESCE(i.name, ''),
COALESCE(SUM(t.quantity), 0),
COALESCE(SUM(t.total_amount), 0),
COUNT(*)
FROM transactions t
LEFT JOIN inventory_items i ON i.id = t.item_id
WHERE t.owner_id = $1 AND t.transaction_type = 'sale' AND t.created_at >= $2
GROUP BY t.item_id, i.name
ORDER BY SUM(t.total_amount) DESC, SUM(t.quantity) DESC, t.item_id ASC
LIMIT $3`, ownerID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ItemID, &p.ItemName, &p.TotalQuantity, &p.TotalRevenue, &p.SaleCount); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// MonthlyTrend returns the owner's newest months from the profit and loss
// summary view, oldest first.
func (r *Repository) MonthlyTrend(ctx context.Context, ownerID int64, months int) ([]MonthlySummary, error) {
	if months <= 0 {
		months = 12
	}
	rows, err := r.pool.Query(ctx, `SELECT month, revenue, cost, profit
FROM profit_loss_summary
WHERE owner_id = $1
ORDER BY month DESC
LIMIT $2`, ownerID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trend []MonthlySummary
	for rows.Next() {
		var m MonthlySummary
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Cost, &m.Profit); err != nil {
			return nil, err
		}
		trend = append(trend, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(trend)-1; i < j; i, j = i+1, j-1 {
		trend[i], trend[j] = trend[j], trend[i]
	}
	return trend, nil
}

// RefreshSummary rebuilds the profit and loss materialized view. Called from
// the scheduled worker task, never from a request path.
func (r *Repository) RefreshSummary(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY profit_loss_summary`)
	return err
}
