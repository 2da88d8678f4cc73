package payment

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCash    Method = "cash"
	MethodCard    Method = "card"
	MethodOnline  Method = "online"
	MethodVoucher Method = "voucher"
	MethodOther   Method = "other"
)

func (m Method) String() string {
	return string(m)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// Payment is one monetary settlement applied against an order. Multiple
// payments may apply to one order (split/partial payment); only payments
// in status paid count towards the remaining amount.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    Method          `json:"method"`
	Status    Status          `json:"status"`
	Note      *string         `json:"note,omitempty"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
