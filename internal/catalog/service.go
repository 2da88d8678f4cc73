package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	// ErrCategoryInUse is returned when deleting a category that still owns
	// product records.
	ErrCategoryInUse = errors.New("category has products and cannot be deleted")
	// ErrProductInUse is returned when deleting a product that historical
	// order items still reference. Such products can only be deactivated.
	ErrProductInUse = errors.New("product has been ordered and cannot be deleted")
)

type Service interface {
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, onlyActive bool) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	ToggleCategoryActive(ctx context.Context, id uuid.UUID) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, onlyActive bool) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	ToggleProductActive(ctx context.Context, id uuid.UUID) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate category id: %w", err)
	}
	c.ID = id

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		log.Error().Err(err).Msg("service: failed to create category")
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}

	log.Info().Stringer("category_id", c.ID).Str("name", c.Name).Msg("service: category created")
	return c, nil
}

func (s *service) GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch category: %w", err)
	}
	return c, nil
}

func (s *service) ListCategories(ctx context.Context, onlyActive bool) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) UpdateCategory(ctx context.Context, c *Category) error {
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("service: failed to update category: %w", err)
	}
	return nil
}

func (s *service) ToggleCategoryActive(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.IsActive = !c.IsActive
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("service: failed to toggle category status: %w", err)
	}

	log.Info().Stringer("category_id", id).Bool("is_active", c.IsActive).Msg("service: category status toggled")
	return c, nil
}

// DeleteCategory soft-deletes the category. The in-use guard counts all
// product rows, soft-deleted ones included, so the guard decision matches
// what the foreign keys would enforce.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to check category usage: %w", err)
	}
	if count > 0 {
		log.Warn().Stringer("category_id", id).Int("products", count).Msg("service: refusing to delete category in use")
		return ErrCategoryInUse
	}

	if err := s.repo.SoftDeleteCategory(ctx, id); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("service: failed to delete category: %w", err)
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if _, err := s.GetCategoryByID(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate product id: %w", err)
	}
	p.ID = id

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func validateProduct(p *Product) error {
	if p.Price.Cmp(decimal.Zero) < 0 {
		return fmt.Errorf("service: product price cannot be negative, got %s", p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("service: product stock cannot be negative, got %d", p.Stock)
	}
	return nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	if _, err := s.GetCategoryByID(ctx, p.CategoryID); err != nil {
		return err
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("service: failed to update product: %w", err)
	}
	return nil
}

func (s *service) ToggleProductActive(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.IsActive = !p.IsActive
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("service: failed to toggle product status: %w", err)
	}

	log.Info().Stringer("product_id", id).Bool("is_active", p.IsActive).Msg("service: product status toggled")
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CountOrderItemsForProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to check product usage: %w", err)
	}
	if count > 0 {
		log.Warn().Stringer("product_id", id).Int("order_items", count).Msg("service: refusing to delete product in use")
		return ErrProductInUse
	}

	if err := s.repo.SoftDeleteProduct(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("service: failed to delete product: %w", err)
	}
	return nil
}
