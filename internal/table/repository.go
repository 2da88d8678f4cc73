package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTableNotFound = errors.New("table not found")

type Repository interface {
	Create(ctx context.Context, t *Table) error
	GetByID(ctx context.Context, id uuid.UUID) (*Table, error)
	List(ctx context.Context) ([]Table, error)
	Update(ctx context.Context, t *Table) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HasActiveOrder(ctx context.Context, id uuid.UUID) (bool, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, t *Table) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
		INSERT INTO tables (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query, t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("repository: failed to insert table: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Table, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM tables
		WHERE id = $1 AND deleted_at IS NULL
	`

	var t Table
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("repository: failed to select table by id %s: %w", id, err)
	}
	return &t, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Table, error) {
	query := `
		SELECT t.id, t.name, t.description, t.created_at, t.updated_at,
		       COUNT(o.id) AS active_order_count
		FROM tables t
		LEFT JOIN orders o ON o.table_id = t.id AND o.status NOT IN ('closed', 'paid', 'cancelled')
		WHERE t.deleted_at IS NULL
		GROUP BY t.id
		ORDER BY t.name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query tables: %w", err)
	}
	defer rows.Close()

	tables := make([]Table, 0)
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt, &t.ActiveOrderCount); err != nil {
			return nil, fmt.Errorf("repository: failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating tables: %w", err)
	}
	return tables, nil
}

func (r *postgresRepository) Update(ctx context.Context, t *Table) error {
	query := `
		UPDATE tables
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`
	cmdTag, err := r.db.Exec(ctx, query, t.ID, t.Name, t.Description, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to update table %s: %w", t.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrTableNotFound
	}
	return nil
}

func (r *postgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	query := `UPDATE tables SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	cmdTag, err := r.db.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("repository: failed to soft-delete table %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrTableNotFound
	}
	return nil
}

func (r *postgresRepository) HasActiveOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE table_id = $1 AND status NOT IN ('closed', 'paid', 'cancelled')
		)
	`
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: failed to check active order for table %s: %w", id, err)
	}
	return exists, nil
}
