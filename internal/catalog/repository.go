package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
)

type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, onlyActive bool) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) error
	CountProductsInCategory(ctx context.Context, categoryID uuid.UUID) (int, error)

	CreateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, onlyActive bool) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) error
	CountOrderItemsForProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateCategory(ctx context.Context, c *Category) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO categories (id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query, c.ID, c.Name, c.IsActive, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("repository: failed to insert category: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	query := `SELECT id, name, is_active, created_at, updated_at FROM categories WHERE id = $1 AND deleted_at IS NULL`

	var c Category
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("repository: failed to select category by id %s: %w", id, err)
	}
	return &c, nil
}

func (r *postgresRepository) ListCategories(ctx context.Context, onlyActive bool) ([]Category, error) {
	query := `
		SELECT c.id, c.name, c.is_active, c.created_at, c.updated_at,
		       COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.deleted_at IS NULL
		WHERE c.deleted_at IS NULL AND ($1 = false OR c.is_active)
		GROUP BY c.id
		ORDER BY c.name
	`

	rows, err := r.db.Query(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}
	return categories, nil
}

func (r *postgresRepository) UpdateCategory(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $2, is_active = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`
	cmdTag, err := r.db.Exec(ctx, query, c.ID, c.Name, c.IsActive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to update category %s: %w", c.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *postgresRepository) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	query := `UPDATE categories SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	cmdTag, err := r.db.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("repository: failed to soft-delete category %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CountProductsInCategory counts every product row owned by the category,
// soft-deleted ones included: their foreign keys still reference the
// category row.
func (r *postgresRepository) CountProductsInCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products WHERE category_id = $1`
	if err := r.db.QueryRow(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count products in category %s: %w", categoryID, err)
	}
	return count, nil
}

const productColumns = `id, category_id, name, description, price, stock, is_active, image_path, created_at, updated_at`

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (id, category_id, name, description, price, stock, is_active, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.IsActive, p.ImagePath, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`

	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}
	return &p, nil
}

func (r *postgresRepository) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE deleted_at IS NULL AND ($1 = false OR is_active)
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		err := rows.Scan(
			&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return products, nil
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET category_id = $2, name = $3, description = $4, price = $5, stock = $6, is_active = $7, image_path = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.IsActive, p.ImagePath, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	query := `UPDATE products SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	cmdTag, err := r.db.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("repository: failed to soft-delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) CountOrderItemsForProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM order_items WHERE product_id = $1`
	if err := r.db.QueryRow(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count order items for product %s: %w", productID, err)
	}
	return count, nil
}
