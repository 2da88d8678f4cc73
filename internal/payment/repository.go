package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	List(ctx context.Context) ([]Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)
	Update(ctx context.Context, p *Payment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	SumPaidByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const paymentColumns = `id, order_id, amount, method, status, note, paid_at, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *Payment) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO payments (id, order_id, amount, method, status, note, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.OrderID, p.Amount, string(p.Method), string(p.Status), p.Note, p.PaidAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert payment: %w", err)
	}
	return nil
}

func scanPayment(row pgx.Row, p *Payment) error {
	return row.Scan(
		&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.Note, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var p Payment
	if err := scanPayment(r.db.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("repository: failed to select payment by id %s: %w", id, err)
	}
	return &p, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC`
	return r.queryPayments(ctx, query)
}

func (r *postgresRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at`
	return r.queryPayments(ctx, query, orderID)
}

func (r *postgresRepository) queryPayments(ctx context.Context, query string, args ...any) ([]Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, fmt.Errorf("repository: failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating payments: %w", err)
	}
	return payments, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Payment) error {
	query := `
		UPDATE payments
		SET amount = $2, method = $3, status = $4, note = $5, paid_at = $6, updated_at = $7
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.ID, p.Amount, string(p.Method), string(p.Status), p.Note, p.PaidAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update payment %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE payments SET status = $2, updated_at = $3 WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to update payment status %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *postgresRepository) SumPaidByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1 AND status = 'paid'`
	if err := r.db.QueryRow(ctx, query, orderID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("repository: failed to sum paid payments for order %s: %w", orderID, err)
	}
	return sum, nil
}
