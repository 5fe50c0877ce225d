package inventory

import (
	"errors"
	"time"
)

// StockStatus classifies an item by quantity against its minimum level.
type StockStatus string

const (
	// StockStatusOut means the item has no stock at all.
	StockStatusOut StockStatus = "out_of_stock"
	// StockStatusLow means the quantity is at or below the minimum level.
	StockStatusLow StockStatus = "low_stock"
	// StockStatusIn means the quantity is above the minimum level.
	StockStatusIn StockStatus = "in_stock"
)

// Category groups inventory items, scoped per owner.
type Category struct {
	ID      int64
	OwnerID int64
	Name    string
}

// Item is a single stock-keeping record owned by a shop owner.
type Item struct {
	ID              int64
	OwnerID         int64
	CategoryID      *int64
	CategoryName    string
	Name            string
	Description     string
	SKU             string
	Barcode         string
	CostPrice       float64
	SellingPrice    float64
	QuantityInStock int
	MinStockLevel   int
	ImageURL        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StockStatus derives the classification. Every item maps to exactly one
// status: quantity = 0, 0 < quantity <= min level, quantity > min level.
func (i Item) StockStatus() StockStatus {
	switch {
	case i.QuantityInStock == 0:
		return StockStatusOut
	case i.QuantityInStock <= i.MinStockLevel:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// ProfitMargin returns (selling - cost) / selling, or 0 when selling is 0.
func (i Item) ProfitMargin() float64 {
	if i.SellingPrice == 0 {
		return 0
	}
	return (i.SellingPrice - i.CostPrice) / i.SellingPrice
}

// ClientItem is the price-redacted projection served to client accounts.
// It intentionally carries no cost or selling price.
type ClientItem struct {
	ID              int64
	CategoryName    string
	Name            string
	Description     string
	SKU             string
	QuantityInStock int
	MinStockLevel   int
	ImageURL        string
}

// StockStatus derives the classification for the client projection.
func (c ClientItem) StockStatus() StockStatus {
	return Item{QuantityInStock: c.QuantityInStock, MinStockLevel: c.MinStockLevel}.StockStatus()
}

// StockFilter selects a derived-status slice of the catalog.
type StockFilter string

const (
	// StockFilterNone disables status filtering.
	StockFilterNone StockFilter = ""
	// StockFilterLow keeps items with 0 < quantity <= min level.
	StockFilterLow StockFilter = "low-stock"
	// StockFilterOut keeps items with zero quantity.
	StockFilterOut StockFilter = "out-of-stock"
)

// Filter configures List queries.
type Filter struct {
	Search     string
	CategoryID int64
	Stock      StockFilter
}

// Summary aggregates catalog counts for the inventory pages.
type Summary struct {
	TotalItems int
	LowStock   int
	OutOfStock int
	StockValue float64
}

// ItemInput carries validated form fields for create/update.
type ItemInput struct {
	Name            string
	Description     string
	SKU             string
	Barcode         string
	CategoryID      *int64
	CostPrice       float64
	SellingPrice    float64
	QuantityInStock int
	MinStockLevel   int
	ImageURL        string
}

// ErrNegativePrice indicates a price below zero.
var ErrNegativePrice = errors.New("inventory: prices must be >= 0")

// ErrNegativeQuantity indicates a stock quantity below zero.
var ErrNegativeQuantity = errors.New("inventory: quantities must be >= 0")

// ErrNameRequired indicates a missing item name.
var ErrNameRequired = errors.New("inventory: name is required")
