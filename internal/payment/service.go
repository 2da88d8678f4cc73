package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kebapci/pos-service/internal/order"
)

var (
	// ErrOrderCancelled is returned when paying a cancelled order.
	ErrOrderCancelled = errors.New("cannot add payment to a cancelled order")
	// ErrOverpayment is returned when the requested amount exceeds the
	// order's remaining amount.
	ErrOverpayment = errors.New("payment amount exceeds the remaining amount")
	// ErrAmountTooSmall is returned for amounts below the 0.01 minimum.
	ErrAmountTooSmall = errors.New("payment amount must be at least 0.01")
)

// minAmount is the smallest accepted payment, matching the currency
// granularity of the NUMERIC(10,2) amount column. Anything below it would
// round to zero in storage.
var minAmount = decimal.New(1, -2)

// OrderStore is the slice of the order repository the settlement logic
// needs: reading an order and moving its status.
type OrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status, closedAt *time.Time) error
}

type AddInput struct {
	OrderID uuid.UUID
	Amount  decimal.Decimal
	Method  Method
	Note    *string
}

type UpdateInput struct {
	Amount decimal.Decimal
	Method Method
	Status Status
	Note   *string
}

type Service interface {
	AddPayment(ctx context.Context, in AddInput) (*Payment, error)
	GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context) ([]Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, in UpdateInput) (*Payment, error)
	CancelPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	RemainingAmount(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo   Repository
	orders OrderStore
}

func NewService(repo Repository, orders OrderStore) Service {
	return &service{repo: repo, orders: orders}
}

// remaining derives the unsettled part of the order's total. It is never
// stored; every settlement decision recomputes it from the payment ledger.
func (s *service) remaining(ctx context.Context, o *order.Order) (decimal.Decimal, error) {
	paid, err := s.repo.SumPaidByOrder(ctx, o.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return o.Total.Sub(paid), nil
}

func (s *service) AddPayment(ctx context.Context, in AddInput) (*Payment, error) {
	if in.Amount.Cmp(minAmount) < 0 {
		return nil, ErrAmountTooSmall
	}

	o, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for payment: %w", err)
	}

	if o.Status == order.StatusCancelled {
		log.Warn().Stringer("order_id", o.ID).Msg("service: attempt to pay a cancelled order")
		return nil, ErrOrderCancelled
	}

	remaining, err := s.remaining(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("service: failed to derive remaining amount: %w", err)
	}
	if in.Amount.Cmp(remaining) > 0 {
		log.Warn().Stringer("order_id", o.ID).Str("amount", in.Amount.String()).Str("remaining", remaining.String()).Msg("service: overpayment rejected")
		return nil, ErrOverpayment
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate payment id: %w", err)
	}

	now := time.Now().UTC()
	p := &Payment{
		ID:      id,
		OrderID: in.OrderID,
		Amount:  in.Amount,
		Method:  in.Method,
		Status:  StatusPaid,
		Note:    in.Note,
		PaidAt:  &now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to create payment")
		return nil, fmt.Errorf("service: failed to create payment: %w", err)
	}

	remaining = remaining.Sub(in.Amount)
	if remaining.Sign() <= 0 {
		if err := s.orders.UpdateStatus(ctx, o.ID, order.StatusPaid, &now); err != nil {
			return nil, fmt.Errorf("service: failed to mark order paid: %w", err)
		}
		log.Info().Stringer("order_id", o.ID).Msg("service: order fully settled")
	} else {
		if err := s.orders.UpdateStatus(ctx, o.ID, order.StatusClosed, nil); err != nil {
			return nil, fmt.Errorf("service: failed to mark order closed: %w", err)
		}
		log.Info().Stringer("order_id", o.ID).Str("remaining", remaining.String()).Msg("service: order partially settled")
	}

	return p, nil
}

func (s *service) GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch payment: %w", err)
	}
	return p, nil
}

func (s *service) ListPayments(ctx context.Context) ([]Payment, error) {
	payments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *service) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error) {
	payments, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list order payments: %w", err)
	}
	return payments, nil
}

// UpdatePayment mutates a payment's fields and then re-derives the order's
// settlement status from the ledger. This is the only code path besides
// AddPayment and CancelPayment that moves an order between paid and closed,
// so a manual staff override survives until the next payment mutation.
func (s *service) UpdatePayment(ctx context.Context, id uuid.UUID, in UpdateInput) (*Payment, error) {
	if in.Amount.Cmp(minAmount) < 0 {
		return nil, ErrAmountTooSmall
	}

	p, err := s.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Amount = in.Amount
	p.Method = in.Method
	p.Note = in.Note
	if in.Status == StatusPaid && p.Status != StatusPaid {
		now := time.Now().UTC()
		p.PaidAt = &now
	}
	p.Status = in.Status

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("service: failed to update payment: %w", err)
	}

	if err := s.syncOrderStatus(ctx, p); err != nil {
		return nil, err
	}

	log.Info().Stringer("payment_id", p.ID).Stringer("order_id", p.OrderID).Msg("service: payment updated")
	return p, nil
}

func (s *service) CancelPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, fmt.Errorf("service: failed to cancel payment: %w", err)
	}
	p.Status = StatusCancelled

	if err := s.syncOrderStatus(ctx, p); err != nil {
		return nil, err
	}

	log.Info().Stringer("payment_id", p.ID).Stringer("order_id", p.OrderID).Msg("service: payment cancelled")
	return p, nil
}

// syncOrderStatus keeps the order loosely synchronized with the payment
// ledger after a payment mutation: fully settled orders become paid, and a
// paid order whose remaining amount climbed back above zero reverts to
// closed.
func (s *service) syncOrderStatus(ctx context.Context, p *Payment) error {
	o, err := s.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return fmt.Errorf("service: failed to fetch order for settlement sync: %w", err)
	}

	remaining, err := s.remaining(ctx, o)
	if err != nil {
		return fmt.Errorf("service: failed to derive remaining amount: %w", err)
	}

	switch {
	case remaining.Sign() <= 0 && p.Status == StatusPaid:
		if o.Status != order.StatusPaid {
			now := time.Now().UTC()
			if err := s.orders.UpdateStatus(ctx, o.ID, order.StatusPaid, &now); err != nil {
				return fmt.Errorf("service: failed to mark order paid: %w", err)
			}
			log.Info().Stringer("order_id", o.ID).Msg("service: order settled after payment change")
		}
	case o.Status == order.StatusPaid && remaining.Sign() > 0:
		if err := s.orders.UpdateStatus(ctx, o.ID, order.StatusClosed, nil); err != nil {
			return fmt.Errorf("service: failed to revert order to closed: %w", err)
		}
		log.Info().Stringer("order_id", o.ID).Str("remaining", remaining.String()).Msg("service: order reverted to closed")
	}

	return nil
}

func (s *service) RemainingAmount(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return decimal.Zero, order.ErrOrderNotFound
		}
		return decimal.Zero, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	return s.remaining(ctx, o)
}
