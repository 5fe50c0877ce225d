package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailpro/retailpro/internal/shared"
)

// ItemRow is the locked stock snapshot used inside the sale transaction.
type ItemRow struct {
	ID              int64
	Name            string
	SellingPrice    float64
	QuantityInStock int
}

// TxRepository exposes the operations available inside a sale transaction.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, ownerID, itemID int64) (ItemRow, error)
	InsertTransaction(ctx context.Context, tx Transaction) (int64, error)
	DecrementStock(ctx context.Context, ownerID, itemID int64, qty int) (bool, error)
}

// Repository persists sales data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction. The callback
// returning an error rolls everything back, ledger insert included.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetItemForUpdate locks the owner's item row for the rest of the transaction.
func (r *txRepo) GetItemForUpdate(ctx context.Context, ownerID, itemID int64) (ItemRow, error) {
	var row ItemRow
	err := r.tx.QueryRow(ctx, `SELECT id, name, selling_price, quantity_in_stock
FROM inventory_items WHERE id = $1 AND owner_id = $2 FOR UPDATE`, itemID, ownerID).
		Scan(&row.ID, &row.Name, &row.SellingPrice, &row.QuantityInStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemRow{}, shared.ErrNotFound
		}
		return ItemRow{}, err
	}
	return row, nil
}

// InsertTransaction appends a ledger row.
func (r *txRepo) InsertTransaction(ctx context.Context, t Transaction) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO transactions
(owner_id, item_id, transaction_type, quantity, unit_price, total_amount, customer_name, customer_phone, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)
RETURNING id`,
		t.OwnerID, t.ItemID, string(t.Type), t.Quantity, t.UnitPrice, t.TotalAmount,
		t.CustomerName, t.CustomerPhone, t.Notes, t.CreatedAt).Scan(&id)
	return id, err
}

// DecrementStock applies the conditional stock update. The quantity guard is
// re-validated here so a concurrent sale can never drive stock negative;
// false means the guard rejected the write.
func (r *txRepo) DecrementStock(ctx context.Context, ownerID, itemID int64, qty int) (bool, error) {
	tag, err := r.tx.Exec(ctx, `UPDATE inventory_items
SET quantity_in_stock = quantity_in_stock - $3, updated_at = $4
WHERE id = $1 AND owner_id = $2 AND quantity_in_stock >= $3`,
		itemID, ownerID, qty, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Recent returns the owner's newest transactions joined with item names.
func (r *Repository) Recent(ctx context.Context, ownerID int64, since time.Time, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT t.id, t.owner_id, t.item_id, COALESCE(i.name, ''), t.transaction_type, t.quantity,
t.unit_price, t.total_amount, COALESCE(t.customer_name, ''), COALESCE(t.customer_phone, ''), COALESCE(t.notes, ''), t.created_at
FROM transactions t
LEFT JOIN inventory_items i ON i.id = t.item_id
WHERE t.owner_id = $1`
	args := []interface{}{ownerID}
	if !since.IsZero() {
		query += ` AND t.created_at >= $2`
		args = append(args, since)
	}
	query += ` ORDER BY t.created_at DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.ItemID, &t.ItemName, &t.Type, &t.Quantity,
			&t.UnitPrice, &t.TotalAmount, &t.CustomerName, &t.CustomerPhone, &t.Notes, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
