package sales

import (
	"errors"
	"fmt"
	"time"
)

// TransactionType labels ledger entries.
type TransactionType string

const (
	// TypeSale is an outbound sale decrementing stock.
	TypeSale TransactionType = "sale"
	// TypePurchase is an inbound restock entry.
	TypePurchase TransactionType = "purchase"
)

// Transaction is an immutable ledger entry. Rows are only ever inserted;
// no edit or void flow exists.
type Transaction struct {
	ID            int64
	OwnerID       int64
	ItemID        int64
	ItemName      string
	Type          TransactionType
	Quantity      int
	UnitPrice     float64
	TotalAmount   float64
	CustomerName  string
	CustomerPhone string
	Notes         string
	CreatedAt     time.Time
}

// SaleInput carries a sale request. A nil UnitPrice means "use the item's
// current selling price".
type SaleInput struct {
	ItemID        int64
	Quantity      int
	UnitPrice     *float64
	CustomerName  string
	CustomerPhone string
	Notes         string
}

// ErrInvalidQuantity indicates a non-positive sale quantity.
var ErrInvalidQuantity = errors.New("sales: quantity must be a positive integer")

// ErrInvalidUnitPrice indicates a negative unit price.
var ErrInvalidUnitPrice = errors.New("sales: unit price must be >= 0")

// InsufficientStockError rejects a sale exceeding the available quantity.
type InsufficientStockError struct {
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("sales: only %d items available in stock", e.Available)
}
