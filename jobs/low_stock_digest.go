package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type lowStockRow struct {
	OwnerID  int64
	Email    string
	ShopName string
	Count    int
	Items    string
}

// LowStockDigester emails each owner a digest of items at or below their
// minimum stock level.
type LowStockDigester struct {
	Pool   *pgxpool.Pool
	Mail   *Client
	Logger *slog.Logger
}

// HandleLowStockDigest processes TaskTypeLowStockDigest tasks.
func (d *LowStockDigester) HandleLowStockDigest(ctx context.Context, t *asynq.Task) error {
	if d.Pool == nil || d.Mail == nil {
		return nil
	}
	rows, err := d.Pool.Query(ctx, `SELECT
u.id, u.email, COALESCE(p.shop_name, ''),
COUNT(*), string_agg(i.name, ', ' ORDER BY i.name)
FROM inventory_items i
JOIN users u ON u.id = i.owner_id
LEFT JOIN profiles p ON p.user_id = u.id
WHERE i.quantity_in_stock <= i.min_stock_level
GROUP BY u.id, u.email, p.shop_name`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var digests []lowStockRow
	for rows.Next() {
		var row lowStockRow
		if err := rows.Scan(&row.OwnerID, &row.Email, &row.ShopName, &row.Count, &row.Items); err != nil {
			return err
		}
		digests = append(digests, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, digest := range digests {
		shop := digest.ShopName
		if shop == "" {
			shop = "your shop"
		}
		payload := SendEmailPayload{
			To:      digest.Email,
			Subject: fmt.Sprintf("%d items need restocking", digest.Count),
			Body:    fmt.Sprintf("The following items in %s are at or below their minimum stock level: %s", shop, digest.Items),
		}
		if _, err := d.Mail.EnqueueSendEmail(ctx, payload); err != nil {
			if d.Logger != nil {
				d.Logger.Error("enqueue low stock email",
					slog.Int64("owner_id", digest.OwnerID), slog.Any("error", err))
			}
			return err
		}
	}
	if d.Logger != nil {
		d.Logger.Info("low stock digest queued", slog.Int("owners", len(digests)))
	}
	return nil
}
