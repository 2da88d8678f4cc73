package catalog_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebapci/pos-service/internal/catalog"
)

type mockRepository struct {
	getCategoryByIDFunc           func(ctx context.Context, id uuid.UUID) (*catalog.Category, error)
	updateCategoryFunc            func(ctx context.Context, c *catalog.Category) error
	softDeleteCategoryFunc        func(ctx context.Context, id uuid.UUID) error
	countProductsInCategoryFunc   func(ctx context.Context, categoryID uuid.UUID) (int, error)
	createProductFunc             func(ctx context.Context, p *catalog.Product) error
	getProductByIDFunc            func(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	softDeleteProductFunc         func(ctx context.Context, id uuid.UUID) error
	countOrderItemsForProductFunc func(ctx context.Context, productID uuid.UUID) (int, error)
}

func (m *mockRepository) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return nil
}

func (m *mockRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	if m.getCategoryByIDFunc != nil {
		return m.getCategoryByIDFunc(ctx, id)
	}
	return nil, catalog.ErrCategoryNotFound
}

func (m *mockRepository) ListCategories(ctx context.Context, onlyActive bool) ([]catalog.Category, error) {
	return nil, nil
}

func (m *mockRepository) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	if m.updateCategoryFunc != nil {
		return m.updateCategoryFunc(ctx, c)
	}
	return nil
}

func (m *mockRepository) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	if m.softDeleteCategoryFunc != nil {
		return m.softDeleteCategoryFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) CountProductsInCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	if m.countProductsInCategoryFunc != nil {
		return m.countProductsInCategoryFunc(ctx, categoryID)
	}
	return 0, nil
}

func (m *mockRepository) CreateProduct(ctx context.Context, p *catalog.Product) error {
	if m.createProductFunc != nil {
		return m.createProductFunc(ctx, p)
	}
	return nil
}

func (m *mockRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if m.getProductByIDFunc != nil {
		return m.getProductByIDFunc(ctx, id)
	}
	return nil, catalog.ErrProductNotFound
}

func (m *mockRepository) ListProducts(ctx context.Context, onlyActive bool) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockRepository) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return nil
}

func (m *mockRepository) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	if m.softDeleteProductFunc != nil {
		return m.softDeleteProductFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) CountOrderItemsForProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	if m.countOrderItemsForProductFunc != nil {
		return m.countOrderItemsForProductFunc(ctx, productID)
	}
	return 0, nil
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func TestService_DeleteCategory(t *testing.T) {
	t.Run("category_with_products_is_kept", func(t *testing.T) {
		deleted := false
		repo := &mockRepository{
			countProductsInCategoryFunc: func(ctx context.Context, categoryID uuid.UUID) (int, error) {
				return 3, nil
			},
			softDeleteCategoryFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted = true
				return nil
			},
		}
		svc := catalog.NewService(repo)

		err := svc.DeleteCategory(context.Background(), mustUUID(t))
		assert.ErrorIs(t, err, catalog.ErrCategoryInUse)
		assert.False(t, deleted)
	})

	// soft-deleted products still hold foreign keys to the category, so
	// the guard must count them too
	t.Run("category_with_only_soft_deleted_products_is_kept", func(t *testing.T) {
		deleted := false
		repo := &mockRepository{
			countProductsInCategoryFunc: func(ctx context.Context, categoryID uuid.UUID) (int, error) {
				return 1, nil
			},
			softDeleteCategoryFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted = true
				return nil
			},
		}
		svc := catalog.NewService(repo)

		err := svc.DeleteCategory(context.Background(), mustUUID(t))
		assert.ErrorIs(t, err, catalog.ErrCategoryInUse)
		assert.False(t, deleted)
	})

	t.Run("empty_category_is_soft_deleted", func(t *testing.T) {
		deleted := false
		repo := &mockRepository{
			softDeleteCategoryFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted = true
				return nil
			},
		}
		svc := catalog.NewService(repo)

		require.NoError(t, svc.DeleteCategory(context.Background(), mustUUID(t)))
		assert.True(t, deleted)
	})
}

func TestService_DeleteProduct(t *testing.T) {
	t.Run("ordered_product_is_kept", func(t *testing.T) {
		repo := &mockRepository{
			countOrderItemsForProductFunc: func(ctx context.Context, productID uuid.UUID) (int, error) {
				return 1, nil
			},
		}
		svc := catalog.NewService(repo)

		err := svc.DeleteProduct(context.Background(), mustUUID(t))
		assert.ErrorIs(t, err, catalog.ErrProductInUse)
	})

	t.Run("unordered_product_is_soft_deleted", func(t *testing.T) {
		softDeleted := false
		repo := &mockRepository{
			softDeleteProductFunc: func(ctx context.Context, id uuid.UUID) error {
				softDeleted = true
				return nil
			},
		}
		svc := catalog.NewService(repo)

		require.NoError(t, svc.DeleteProduct(context.Background(), mustUUID(t)))
		assert.True(t, softDeleted)
	})
}

func TestService_CreateProduct(t *testing.T) {
	categoryID := uuid.Must(uuid.FromString("0d9ff6a1-2f2c-4f6d-9c33-6d2b5a8a9f01"))

	repo := &mockRepository{
		getCategoryByIDFunc: func(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
			if id == categoryID {
				return &catalog.Category{ID: categoryID, Name: "Kebaplar", IsActive: true}, nil
			}
			return nil, catalog.ErrCategoryNotFound
		},
	}
	svc := catalog.NewService(repo)

	t.Run("negative_price_rejected", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), &catalog.Product{
			CategoryID: categoryID,
			Name:       "Adana kebap",
			Price:      decimal.RequireFromString("-1"),
		})
		assert.Error(t, err)
	})

	t.Run("negative_stock_rejected", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), &catalog.Product{
			CategoryID: categoryID,
			Name:       "Adana kebap",
			Price:      decimal.RequireFromString("180"),
			Stock:      -5,
		})
		assert.Error(t, err)
	})

	t.Run("unknown_category_rejected", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), &catalog.Product{
			CategoryID: mustUUID(t),
			Name:       "Adana kebap",
			Price:      decimal.RequireFromString("180"),
		})
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	})

	t.Run("valid_product_gets_id", func(t *testing.T) {
		p, err := svc.CreateProduct(context.Background(), &catalog.Product{
			CategoryID: categoryID,
			Name:       "Adana kebap",
			Price:      decimal.RequireFromString("180"),
			Stock:      10,
			IsActive:   true,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID)
	})
}

func TestService_ToggleProductActive(t *testing.T) {
	productID := mustUUID(t)
	repo := &mockRepository{
		getProductByIDFunc: func(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
			return &catalog.Product{ID: productID, Name: "Ayran", Price: decimal.RequireFromString("30"), IsActive: true}, nil
		},
	}
	svc := catalog.NewService(repo)

	p, err := svc.ToggleProductActive(context.Background(), productID)
	require.NoError(t, err)
	assert.False(t, p.IsActive)
}
