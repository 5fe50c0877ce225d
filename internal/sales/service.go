package sales

import (
	"context"
	"log/slog"
	"time"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Recent(ctx context.Context, ownerID int64, since time.Time, limit int) ([]Transaction, error)
}

// CacheBumper invalidates cached report aggregates after a recorded sale.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service owns the sale-recording write path.
type Service struct {
	repo   RepositoryPort
	cache  CacheBumper
	logger *slog.Logger
}

// NewService builds a Service. cache may be nil.
func NewService(repo RepositoryPort, cache CacheBumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// RecordSale validates the request against locked stock, appends the ledger
// entry and decrements the item quantity, all inside one transaction. Stock
// can never go negative: the decrement re-checks the quantity guard and a
// rejected guard rolls the ledger insert back too.
func (s *Service) RecordSale(ctx context.Context, ownerID int64, input SaleInput) (*Transaction, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if input.UnitPrice != nil && *input.UnitPrice < 0 {
		return nil, ErrInvalidUnitPrice
	}

	var recorded Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItemForUpdate(ctx, ownerID, input.ItemID)
		if err != nil {
			return err
		}
		if input.Quantity > item.QuantityInStock {
			return InsufficientStockError{Available: item.QuantityInStock}
		}

		unitPrice := item.SellingPrice
		if input.UnitPrice != nil {
			unitPrice = *input.UnitPrice
		}

		recorded = Transaction{
			OwnerID:       ownerID,
			ItemID:        item.ID,
			ItemName:      item.Name,
			Type:          TypeSale,
			Quantity:      input.Quantity,
			UnitPrice:     unitPrice,
			TotalAmount:   float64(input.Quantity) * unitPrice,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			Notes:         input.Notes,
			CreatedAt:     time.Now().UTC(),
		}
		id, err := tx.InsertTransaction(ctx, recorded)
		if err != nil {
			return err
		}
		recorded.ID = id

		ok, err := tx.DecrementStock(ctx, ownerID, item.ID, input.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			// The row is locked, so this only fires when the guard and the
			// locked read disagree. Log it distinctly before rolling back.
			if s.logger != nil {
				s.logger.Error("stock decrement rejected after ledger insert",
					slog.Int64("item_id", item.ID), slog.Int("quantity", input.Quantity))
			}
			return InsufficientStockError{Available: item.QuantityInStock}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	return &recorded, nil
}

// Recent lists the owner's newest ledger entries.
func (s *Service) Recent(ctx context.Context, ownerID int64, since time.Time, limit int) ([]Transaction, error) {
	return s.repo.Recent(ctx, ownerID, since, limit)
}
