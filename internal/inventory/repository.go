package inventory

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailpro/retailpro/internal/shared"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `i.id, i.owner_id, i.category_id, COALESCE(c.name, ''), i.name, COALESCE(i.description, ''),
COALESCE(i.sku, ''), COALESCE(i.barcode, ''), i.cost_price, i.selling_price, i.quantity_in_stock,
i.min_stock_level, COALESCE(i.image_url, ''), i.created_at, i.updated_at`

// List returns the owner's items matching the filter, newest first.
func (r *Repository) List(ctx context.Context, ownerID int64, filter Filter) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items i
LEFT JOIN categories c ON c.id = i.category_id
WHERE i.owner_id = $1`
	args := []interface{}{ownerID}
	query, args = applyFilter(query, args, filter)
	query += ` ORDER BY i.created_at DESC`

	return r.queryItems(ctx, query, args)
}

// ListClient returns the full catalog ordered by name. Pricing columns are
// never selected; the projection is the authorization boundary.
func (r *Repository) ListClient(ctx context.Context, filter Filter) ([]ClientItem, error) {
	query := `SELECT i.id, COALESCE(c.name, ''), i.name, COALESCE(i.description, ''), COALESCE(i.sku, ''),
i.quantity_in_stock, i.min_stock_level, COALESCE(i.image_url, '')
FROM inventory_items i
LEFT JOIN categories c ON c.id = i.category_id
WHERE 1=1`
	args := []interface{}{}
	query, args = applyFilter(query, args, filter)
	query += ` ORDER BY i.name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ClientItem
	for rows.Next() {
		var it ClientItem
		if err := rows.Scan(&it.ID, &it.CategoryName, &it.Name, &it.Description, &it.SKU,
			&it.QuantityInStock, &it.MinStockLevel, &it.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get fetches one item visible to the owner.
func (r *Repository) Get(ctx context.Context, ownerID, id int64) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items i
LEFT JOIN categories c ON c.id = i.category_id
WHERE i.id = $1 AND i.owner_id = $2`
	row := r.pool.QueryRow(ctx, query, id, ownerID)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// Create inserts a new item for the owner.
func (r *Repository) Create(ctx context.Context, ownerID int64, input ItemInput) (int64, error) {
	var id int64
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO inventory_items
(owner_id, category_id, name, description, sku, barcode, cost_price, selling_price, quantity_in_stock, min_stock_level, image_url, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, NULLIF($11, ''), $12, $12)
RETURNING id`,
		ownerID, input.CategoryID, input.Name, input.Description, input.SKU, input.Barcode,
		input.CostPrice, input.SellingPrice, input.QuantityInStock, input.MinStockLevel, input.ImageURL, now).Scan(&id)
	return id, err
}

// Update modifies an item; the owner match doubles as the existence check.
func (r *Repository) Update(ctx context.Context, ownerID, id int64, input ItemInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE inventory_items SET
category_id = $3, name = $4, description = NULLIF($5, ''), sku = NULLIF($6, ''), barcode = NULLIF($7, ''),
cost_price = $8, selling_price = $9, quantity_in_stock = $10, min_stock_level = $11,
image_url = NULLIF($12, ''), updated_at = $13
WHERE id = $1 AND owner_id = $2`,
		id, ownerID, input.CategoryID, input.Name, input.Description, input.SKU, input.Barcode,
		input.CostPrice, input.SellingPrice, input.QuantityInStock, input.MinStockLevel, input.ImageURL, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an owner's item. Transactions referencing it cascade at the
// storage layer (ON DELETE CASCADE); no explicit ledger cleanup happens here.
func (r *Repository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Summary aggregates catalog counts for the owner.
func (r *Repository) Summary(ctx context.Context, ownerID int64) (Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, `SELECT
COUNT(*),
COUNT(*) FILTER (WHERE quantity_in_stock > 0 AND quantity_in_stock <= min_stock_level),
COUNT(*) FILTER (WHERE quantity_in_stock = 0),
COALESCE(SUM(cost_price * quantity_in_stock), 0)
FROM inventory_items WHERE owner_id = $1`, ownerID).Scan(&s.TotalItems, &s.LowStock, &s.OutOfStock, &s.StockValue)
	return s, err
}

// LowStock lists the owner's low or out-of-stock items up to limit.
func (r *Repository) LowStock(ctx context.Context, ownerID int64, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + itemColumns + ` FROM inventory_items i
LEFT JOIN categories c ON c.id = i.category_id
WHERE i.owner_id = $1 AND i.quantity_in_stock <= i.min_stock_level
ORDER BY i.quantity_in_stock, i.name LIMIT $2`
	return r.queryItems(ctx, query, []interface{}{ownerID, limit})
}

// ListCategories returns the owner's categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context, ownerID int64) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, owner_id, name FROM categories WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category for the owner.
func (r *Repository) CreateCategory(ctx context.Context, ownerID int64, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (owner_id, name) VALUES ($1, $2) RETURNING id`, ownerID, name).Scan(&id)
	return id, err
}

// DeleteCategory removes an owner's category. Items keep their rows; the
// category reference is set NULL at the storage layer.
func (r *Repository) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func applyFilter(query string, args []interface{}, filter Filter) (string, []interface{}) {
	if filter.Search != "" {
		pos := strconv.Itoa(len(args) + 1)
		query += ` AND (i.name ILIKE $` + pos + ` OR i.description ILIKE $` + pos + ` OR i.sku ILIKE $` + pos + `)`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.CategoryID != 0 {
		pos := strconv.Itoa(len(args) + 1)
		query += ` AND i.category_id = $` + pos
		args = append(args, filter.CategoryID)
	}
	switch filter.Stock {
	case StockFilterLow:
		query += ` AND i.quantity_in_stock > 0 AND i.quantity_in_stock <= i.min_stock_level`
	case StockFilterOut:
		query += ` AND i.quantity_in_stock = 0`
	}
	return query, args
}

func (r *Repository) queryItems(ctx context.Context, query string, args []interface{}) ([]Item, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.OwnerID, &it.CategoryID, &it.CategoryName, &it.Name, &it.Description,
		&it.SKU, &it.Barcode, &it.CostPrice, &it.SellingPrice, &it.QuantityInStock,
		&it.MinStockLevel, &it.ImageURL, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}
