package inventory

import (
	"context"
	"strings"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context, ownerID int64, filter Filter) ([]Item, error)
	ListClient(ctx context.Context, filter Filter) ([]ClientItem, error)
	Get(ctx context.Context, ownerID, id int64) (*Item, error)
	Create(ctx context.Context, ownerID int64, input ItemInput) (int64, error)
	Update(ctx context.Context, ownerID, id int64, input ItemInput) error
	Delete(ctx context.Context, ownerID, id int64) error
	Summary(ctx context.Context, ownerID int64) (Summary, error)
	LowStock(ctx context.Context, ownerID int64, limit int) ([]Item, error)
	ListCategories(ctx context.Context, ownerID int64) ([]Category, error)
	CreateCategory(ctx context.Context, ownerID int64, name string) (int64, error)
	DeleteCategory(ctx context.Context, ownerID, id int64) error
}

// Service coordinates inventory operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the owner's catalog slice selected by the filter.
func (s *Service) List(ctx context.Context, ownerID int64, filter Filter) ([]Item, error) {
	return s.repo.List(ctx, ownerID, filter)
}

// ListClient returns the price-redacted catalog for client accounts.
func (s *Service) ListClient(ctx context.Context, filter Filter) ([]ClientItem, error) {
	return s.repo.ListClient(ctx, filter)
}

// Get fetches one owner-visible item.
func (s *Service) Get(ctx context.Context, ownerID, id int64) (*Item, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Create validates and stores a new item.
func (s *Service) Create(ctx context.Context, ownerID int64, input ItemInput) (int64, error) {
	if err := validateInput(&input); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, ownerID, input)
}

// Update validates and stores changed item fields.
func (s *Service) Update(ctx context.Context, ownerID, id int64, input ItemInput) error {
	if err := validateInput(&input); err != nil {
		return err
	}
	return s.repo.Update(ctx, ownerID, id, input)
}

// Delete removes an owner's item.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Summary aggregates catalog counts for the owner.
func (s *Service) Summary(ctx context.Context, ownerID int64) (Summary, error) {
	return s.repo.Summary(ctx, ownerID)
}

// LowStock lists items needing replenishment.
func (s *Service) LowStock(ctx context.Context, ownerID int64, limit int) ([]Item, error) {
	return s.repo.LowStock(ctx, ownerID, limit)
}

// Categories returns the owner's categories.
func (s *Service) Categories(ctx context.Context, ownerID int64) ([]Category, error) {
	return s.repo.ListCategories(ctx, ownerID)
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, ownerID int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrNameRequired
	}
	return s.repo.CreateCategory(ctx, ownerID, name)
}

// DeleteCategory removes an owner's category.
func (s *Service) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	return s.repo.DeleteCategory(ctx, ownerID, id)
}

func validateInput(input *ItemInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrNameRequired
	}
	if input.CostPrice < 0 || input.SellingPrice < 0 {
		return ErrNegativePrice
	}
	if input.QuantityInStock < 0 || input.MinStockLevel < 0 {
		return ErrNegativeQuantity
	}
	return nil
}
