package order

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
	ErrOrderNotFound = errors.New("order not found")
	ErrItemNotFound  = errors.New("order item not found")
	ErrNoActiveOrder = errors.New("table has no active order")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	ListActive(ctx context.Context) ([]Order, error)
	GetActiveByTable(ctx context.Context, tableID uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, closedAt *time.Time) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*Item, error)
	AddItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	RemoveItem(ctx context.Context, itemID, orderID uuid.UUID) error
	ReplaceItems(ctx context.Context, o *Order, items []Item) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `id, table_id, staff_id, note, status, total, closed_at, created_at, updated_at`

const itemColumns = `id, order_id, product_id, quantity, price, note, status, created_at, updated_at`

// recomputeTotalQuery keeps orders.total equal to the sum of the current
// item line totals. It runs inside the same transaction as every item
// mutation.
const recomputeTotalQuery = `
	UPDATE orders
	SET total = (SELECT COALESCE(SUM(price * quantity), 0) FROM order_items WHERE order_id = $1),
	    updated_at = $2
	WHERE id = $1
`

// withTx runs fn inside a transaction, rolling back on error or panic and
// committing otherwise.
func (r *postgresRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()
	err = fn(tx)
	return err
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO orders (id, table_id, staff_id, note, status, total, closed_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err := tx.Exec(ctx, query,
			o.ID, o.TableID, o.StaffID, o.Note, string(o.Status), o.Total, o.ClosedAt, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order: %w", err)
		}

		for i := range o.Items {
			item := &o.Items[i]
			item.OrderID = o.ID
			item.CreatedAt = now
			item.UpdatedAt = now
			if err := insertItem(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertItem(ctx context.Context, tx pgx.Tx, item *Item) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, note, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Exec(ctx, query,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price, item.Note, string(item.Status), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order item for order %s: %w", item.OrderID, err)
	}
	return nil
}

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.TableID, &o.StaffID, &o.Note, &o.Status, &o.Total, &o.ClosedAt, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o Order
	if err := scanOrder(r.db.QueryRow(ctx, query, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	items, err := r.itemsByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *postgresRepository) itemsByOrder(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.Note, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", orderID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", orderID, err)
	}

	return items, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.listOrders(ctx, query)
}

func (r *postgresRepository) ListActive(ctx context.Context) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE status NOT IN ('closed', 'paid', 'cancelled')
		ORDER BY created_at DESC
	`
	return r.listOrders(ctx, query)
}

func (r *postgresRepository) listOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	orderRows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		var o Order
		if err := scanOrder(orderRows, &o); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]Item, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}
	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemsQuery := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY created_at`
	itemRows, err := r.db.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item Item
		err := itemRows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.Note, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersMap[id])
	}
	return result, nil
}

// GetActiveByTable resolves the table's most recent order whose status is
// not in the final set. Returns ErrNoActiveOrder when the table is free.
func (r *postgresRepository) GetActiveByTable(ctx context.Context, tableID uuid.UUID) (*Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE table_id = $1 AND status NOT IN ('closed', 'paid', 'cancelled')
		ORDER BY created_at DESC
		LIMIT 1
	`

	var o Order
	if err := scanOrder(r.db.QueryRow(ctx, query, tableID), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveOrder
		}
		return nil, fmt.Errorf("repository: failed to select active order for table %s: %w", tableID, err)
	}

	items, err := r.itemsByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, closedAt *time.Time) error {
	query := `
		UPDATE orders
		SET status = $2, closed_at = COALESCE($3, closed_at), updated_at = $4
		WHERE id = $1
	`

	cmdTag, err := r.db.Exec(ctx, query, id, string(status), closedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE id = $1`

	var item Item
	err := r.db.QueryRow(ctx, query, itemID).Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.Note, &item.Status, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order item by id %s: %w", itemID, err)
	}
	return &item, nil
}

func (r *postgresRepository) AddItem(ctx context.Context, item *Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := insertItem(ctx, tx, item); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, item.OrderID)
	})
}

func (r *postgresRepository) UpdateItem(ctx context.Context, item *Item) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE order_items
			SET quantity = $2, note = $3, status = $4, updated_at = $5
			WHERE id = $1
		`
		cmdTag, err := tx.Exec(ctx, query, item.ID, item.Quantity, item.Note, string(item.Status), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("repository: failed to update order item %s: %w", item.ID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrItemNotFound
		}
		return recomputeTotal(ctx, tx, item.OrderID)
	})
}

func (r *postgresRepository) RemoveItem(ctx context.Context, itemID, orderID uuid.UUID) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
		if err != nil {
			return fmt.Errorf("repository: failed to delete order item %s: %w", itemID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrItemNotFound
		}
		return recomputeTotal(ctx, tx, orderID)
	})
}

// ReplaceItems applies a bulk update in one transaction: order fields,
// deletions of items missing from the new set, updates of surviving items,
// inserts of new ones, then the total recompute.
func (r *postgresRepository) ReplaceItems(ctx context.Context, o *Order, items []Item) error {
	now := time.Now().UTC()

	return r.withTx(ctx, func(tx pgx.Tx) error {
		orderQuery := `
			UPDATE orders
			SET note = $2, status = $3, closed_at = COALESCE($4, closed_at), updated_at = $5
			WHERE id = $1
		`
		cmdTag, err := tx.Exec(ctx, orderQuery, o.ID, o.Note, string(o.Status), o.ClosedAt, now)
		if err != nil {
			return fmt.Errorf("repository: failed to update order %s: %w", o.ID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrOrderNotFound
		}

		keep := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			keep = append(keep, item.ProductID)
		}
		_, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1 AND NOT (product_id = ANY($2))`, o.ID, keep)
		if err != nil {
			return fmt.Errorf("repository: failed to delete removed order items for order %s: %w", o.ID, err)
		}

		for i := range items {
			item := &items[i]
			item.OrderID = o.ID

			updateQuery := `
				UPDATE order_items
				SET quantity = $3, price = $4, updated_at = $5
				WHERE order_id = $1 AND product_id = $2
			`
			cmdTag, err := tx.Exec(ctx, updateQuery, o.ID, item.ProductID, item.Quantity, item.Price, now)
			if err != nil {
				return fmt.Errorf("repository: failed to update order item for product %s: %w", item.ProductID, err)
			}
			if cmdTag.RowsAffected() == 0 {
				item.CreatedAt = now
				item.UpdatedAt = now
				if err := insertItem(ctx, tx, item); err != nil {
					return err
				}
			}
		}

		return recomputeTotal(ctx, tx, o.ID)
	})
}

func recomputeTotal(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	if _, err := tx.Exec(ctx, recomputeTotalQuery, orderID, time.Now().UTC()); err != nil {
		return fmt.Errorf("repository: failed to recompute total for order %s: %w", orderID, err)
	}
	return nil
}
