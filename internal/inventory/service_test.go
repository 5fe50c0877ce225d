package inventory

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInventoryRepo struct {
	items      map[int64]Item
	categories map[int64]Category
	nextID     int64

	lastFilter       Filter
	lastClientFilter Filter
}

func newMockInventoryRepo() *mockInventoryRepo {
	return &mockInventoryRepo{
		items:      make(map[int64]Item),
		categories: make(map[int64]Category),
		nextID:     1,
	}
}

func (m *mockInventoryRepo) List(ctx context.Context, ownerID int64, filter Filter) ([]Item, error) {
	m.lastFilter = filter
	var out []Item
	for _, item := range m.items {
		if item.OwnerID == ownerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockInventoryRepo) ListClient(ctx context.Context, filter Filter) ([]ClientItem, error) {
	m.lastClientFilter = filter
	var out []ClientItem
	for _, item := range m.items {
		out = append(out, ClientItem{
			ID:              item.ID,
			Name:            item.Name,
			SKU:             item.SKU,
			QuantityInStock: item.QuantityInStock,
			MinStockLevel:   item.MinStockLevel,
		})
	}
	return out, nil
}

func (m *mockInventoryRepo) Get(ctx context.Context, ownerID, id int64) (*Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, errNotFoundForTest
	}
	return &item, nil
}

func (m *mockInventoryRepo) Create(ctx context.Context, ownerID int64, input ItemInput) (int64, error) {
	id := m.nextID
	m.nextID++
	m.items[id] = Item{
		ID:              id,
		OwnerID:         ownerID,
		Name:            input.Name,
		CostPrice:       input.CostPrice,
		SellingPrice:    input.SellingPrice,
		QuantityInStock: input.QuantityInStock,
		MinStockLevel:   input.MinStockLevel,
	}
	return id, nil
}

func (m *mockInventoryRepo) Update(ctx context.Context, ownerID, id int64, input ItemInput) error {
	item, ok := m.items[id]
	if !ok {
		return errNotFoundForTest
	}
	item.Name = input.Name
	m.items[id] = item
	return nil
}

func (m *mockInventoryRepo) Delete(ctx context.Context, ownerID, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockInventoryRepo) Summary(ctx context.Context, ownerID int64) (Summary, error) {
	var s Summary
	for _, item := range m.items {
		if item.OwnerID != ownerID {
			continue
		}
		s.TotalItems++
		switch item.StockStatus() {
		case StockStatusOut:
			s.OutOfStock++
		case StockStatusLow:
			s.LowStock++
		}
		s.StockValue += item.CostPrice * float64(item.QuantityInStock)
	}
	return s, nil
}

func (m *mockInventoryRepo) LowStock(ctx context.Context, ownerID int64, limit int) ([]Item, error) {
	var out []Item
	for _, item := range m.items {
		if item.OwnerID == ownerID && item.QuantityInStock <= item.MinStockLevel {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockInventoryRepo) ListCategories(ctx context.Context, ownerID int64) ([]Category, error) {
	var out []Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockInventoryRepo) CreateCategory(ctx context.Context, ownerID int64, name string) (int64, error) {
	id := m.nextID
	m.nextID++
	m.categories[id] = Category{ID: id, OwnerID: ownerID, Name: name}
	return id, nil
}

func (m *mockInventoryRepo) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	delete(m.categories, id)
	return nil
}

var errNotFoundForTest = assert.AnError

func TestCreateValidation(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, ItemInput{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(ctx, 1, ItemInput{Name: "Mug", CostPrice: -1})
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = svc.Create(ctx, 1, ItemInput{Name: "Mug", SellingPrice: -1})
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = svc.Create(ctx, 1, ItemInput{Name: "Mug", QuantityInStock: -1})
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = svc.Create(ctx, 1, ItemInput{Name: "Mug", MinStockLevel: -1})
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	assert.Empty(t, repo.items)
}

func TestCreateTrimsName(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewService(repo)

	id, err := svc.Create(context.Background(), 1, ItemInput{Name: "  Mug  "})
	require.NoError(t, err)
	assert.Equal(t, "Mug", repo.items[id].Name)
}

func TestZeroPricesAreAllowed(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), 1, ItemInput{Name: "Freebie", CostPrice: 0, SellingPrice: 0})
	assert.NoError(t, err)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewService(repo)

	_, err := svc.CreateCategory(context.Background(), 1, "  ")
	assert.ErrorIs(t, err, ErrNameRequired)

	id, err := svc.CreateCategory(context.Background(), 1, " Drinks ")
	require.NoError(t, err)
	assert.Equal(t, "Drinks", repo.categories[id].Name)
}

func TestClientProjectionCarriesNoPricing(t *testing.T) {
	// The client listing must not be able to expose what an item costs or
	// sells for, so the projection type itself has no pricing fields.
	typ := reflect.TypeOf(ClientItem{})
	for i := 0; i < typ.NumField(); i++ {
		name := strings.ToLower(typ.Field(i).Name)
		assert.NotContains(t, name, "price", "field %s leaks pricing", typ.Field(i).Name)
		assert.NotContains(t, name, "cost", "field %s leaks pricing", typ.Field(i).Name)
		assert.NotContains(t, name, "margin", "field %s leaks pricing", typ.Field(i).Name)
	}
}

func TestListClientPassesFilter(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewService(repo)

	filter := Filter{Search: "mug", Stock: StockFilterLow}
	_, err := svc.ListClient(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, filter, repo.lastClientFilter)
}
