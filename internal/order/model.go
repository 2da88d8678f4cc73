package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusClosed    Status = "closed"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// IsFinal reports whether the status is terminal: a table with an order in
// a final status is considered free, and the order's items may no longer be
// modified.
func (s Status) IsFinal() bool {
	switch s {
	case StatusClosed, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusReady     ItemStatus = "ready"
	ItemStatusDelivered ItemStatus = "delivered"
	ItemStatusCancelled ItemStatus = "cancelled"
)

func (s ItemStatus) String() string {
	return string(s)
}

type Item struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // unit price captured at add-time
	Note      *string         `json:"note,omitempty"`
	Status    ItemStatus      `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LineTotal is the item's captured unit price times its quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID        uuid.UUID       `json:"id"`
	TableID   uuid.UUID       `json:"table_id"`
	StaffID   uuid.UUID       `json:"staff_id"`
	Note      *string         `json:"note,omitempty"`
	Status    Status          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Items     []Item          `json:"items"`
	ClosedAt  *time.Time      `json:"closed_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ComputeTotal folds the current items into the order total. Every item
// mutation path ends with this full recompute; totals are never adjusted
// by partial deltas.
func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
