package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kebapci/pos-service/internal/catalog"
	"github.com/kebapci/pos-service/internal/table"
)

var (
	// ErrTableOccupied is returned when creating an order for a table that
	// already has an active (non-final) order.
	ErrTableOccupied = errors.New("table already has an active order")
	// ErrOrderCompleted guards item mutations against orders in a final
	// status.
	ErrOrderCompleted = errors.New("order is completed or cancelled and cannot be modified")
	// ErrOrderPaid guards cancellation of settled orders.
	ErrOrderPaid = errors.New("a paid order cannot be cancelled")
	ErrNoItems   = errors.New("order must contain at least one item")
)

// ProductSource resolves catalog products when capturing item prices.
type ProductSource interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// TableSource resolves seating tables when creating orders.
type TableSource interface {
	GetTableByID(ctx context.Context, id uuid.UUID) (*table.Table, error)
}

type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Note      *string
}

type CreateInput struct {
	TableID uuid.UUID
	StaffID uuid.UUID // explicit staff identity, no ambient session state
	Note    *string
	Items   []ItemInput
}

type UpdateInput struct {
	Note   *string
	Status Status
	Items  []ItemInput
}

type UpdateItemInput struct {
	Quantity int
	Note     *string
	Status   ItemStatus
}

type Service interface {
	CreateOrder(ctx context.Context, in CreateInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListActiveOrders(ctx context.Context) ([]Order, error)
	GetActiveOrderByTable(ctx context.Context, tableID uuid.UUID) (*Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, in UpdateInput) (*Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	AddItem(ctx context.Context, orderID uuid.UUID, in ItemInput) (*Item, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, in UpdateItemInput) (*Item, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
}

type service struct {
	repo     Repository
	products ProductSource
	tables   TableSource
}

func NewService(repo Repository, products ProductSource, tables TableSource) Service {
	return &service{repo: repo, products: products, tables: tables}
}

// mergeItems collapses duplicate product entries by summing quantities,
// preserving first-seen order.
func mergeItems(items []ItemInput) []ItemInput {
	merged := make([]ItemInput, 0, len(items))
	index := make(map[uuid.UUID]int)
	for _, in := range items {
		if i, ok := index[in.ProductID]; ok {
			merged[i].Quantity += in.Quantity
			continue
		}
		index[in.ProductID] = len(merged)
		merged = append(merged, in)
	}
	return merged
}

func validateItemInputs(items []ItemInput) error {
	for _, in := range items {
		if in.Quantity < 1 {
			return fmt.Errorf("service: item quantity for product %s must be at least 1, got %d", in.ProductID, in.Quantity)
		}
		if in.ProductID == uuid.Nil {
			return errors.New("service: product id in order item cannot be nil")
		}
	}
	return nil
}

// buildItems resolves each input against the catalog and captures the
// product's current price. The captured price is immutable for the item's
// lifetime even if the catalog price changes later.
func (s *service) buildItems(ctx context.Context, inputs []ItemInput) ([]Item, error) {
	items := make([]Item, 0, len(inputs))
	for _, in := range inputs {
		product, err := s.products.GetProductByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}

		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate order item id: %w", err)
		}

		items = append(items, Item{
			ID:        id,
			ProductID: product.ID,
			Quantity:  in.Quantity,
			Price:     product.Price,
			Note:      in.Note,
			Status:    ItemStatusPreparing,
		})
	}
	return items, nil
}

func (s *service) CreateOrder(ctx context.Context, in CreateInput) (*Order, error) {
	if len(in.Items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return nil, ErrNoItems
	}
	if err := validateItemInputs(in.Items); err != nil {
		return nil, err
	}

	if _, err := s.tables.GetTableByID(ctx, in.TableID); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetActiveByTable(ctx, in.TableID); err == nil {
		log.Warn().Stringer("table_id", in.TableID).Msg("service: table already has an active order")
		return nil, ErrTableOccupied
	} else if !errors.Is(err, ErrNoActiveOrder) {
		return nil, fmt.Errorf("service: failed to check active order: %w", err)
	}

	items, err := s.buildItems(ctx, mergeItems(in.Items))
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order id: %w", err)
	}

	o := &Order{
		ID:      id,
		TableID: in.TableID,
		StaffID: in.StaffID,
		Note:    in.Note,
		Status:  StatusPreparing,
		Total:   ComputeTotal(items),
		Items:   items,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("table_id", o.TableID).Stringer("staff_id", o.StaffID).Msg("service: order created")
	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListActiveOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list active orders: %w", err)
	}
	return orders, nil
}

func (s *service) GetActiveOrderByTable(ctx context.Context, tableID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetActiveByTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, ErrNoActiveOrder) {
			return nil, ErrNoActiveOrder
		}
		return nil, fmt.Errorf("service: failed to fetch active order: %w", err)
	}
	return o, nil
}

// UpdateOrder replaces the order's item set and fields in one transaction.
// This is the staff-override path: it does not guard on final status, so a
// manager can amend a closed order. Transitioning into closed stamps the
// closed timestamp once.
func (s *service) UpdateOrder(ctx context.Context, id uuid.UUID, in UpdateInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	if err := validateItemInputs(in.Items); err != nil {
		return nil, err
	}

	o, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.buildItems(ctx, mergeItems(in.Items))
	if err != nil {
		return nil, err
	}

	var closedAt *time.Time
	if in.Status == StatusClosed && o.Status != StatusClosed {
		now := time.Now().UTC()
		closedAt = &now
	}

	o.Note = in.Note
	o.Status = in.Status
	o.ClosedAt = closedAt

	if err := s.repo.ReplaceItems(ctx, o, items); err != nil {
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to replace order items")
		return nil, fmt.Errorf("service: failed to update order: %w", err)
	}

	updated, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info().Stringer("order_id", id).Stringer("status", updated.Status).Msg("service: order updated")
	return updated, nil
}

func (s *service) CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status == StatusPaid {
		log.Warn().Stringer("order_id", id).Msg("service: attempt to cancel a paid order")
		return nil, ErrOrderPaid
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, &now); err != nil {
		return nil, fmt.Errorf("service: failed to cancel order: %w", err)
	}

	o.Status = StatusCancelled
	o.ClosedAt = &now

	log.Info().Stringer("order_id", id).Msg("service: order cancelled")
	return o, nil
}

func (s *service) AddItem(ctx context.Context, orderID uuid.UUID, in ItemInput) (*Item, error) {
	if err := validateItemInputs([]ItemInput{in}); err != nil {
		return nil, err
	}

	o, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsFinal() {
		log.Warn().Stringer("order_id", orderID).Stringer("status", o.Status).Msg("service: attempt to add item to completed order")
		return nil, ErrOrderCompleted
	}

	items, err := s.buildItems(ctx, []ItemInput{in})
	if err != nil {
		return nil, err
	}
	item := &items[0]
	item.OrderID = orderID

	if err := s.repo.AddItem(ctx, item); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to add order item")
		return nil, fmt.Errorf("service: failed to add order item: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("product_id", item.ProductID).Int("quantity", item.Quantity).Msg("service: item added to order")
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, itemID uuid.UUID, in UpdateItemInput) (*Item, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("service: item quantity must be at least 1, got %d", in.Quantity)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order item: %w", err)
	}

	o, err := s.GetOrderByID(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsFinal() {
		log.Warn().Stringer("order_id", o.ID).Stringer("status", o.Status).Msg("service: attempt to update item of completed order")
		return nil, ErrOrderCompleted
	}

	item.Quantity = in.Quantity
	item.Note = in.Note
	item.Status = in.Status

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("service: failed to update order item: %w", err)
	}

	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("service: failed to fetch order item: %w", err)
	}

	o, err := s.GetOrderByID(ctx, item.OrderID)
	if err != nil {
		return err
	}
	if o.Status.IsFinal() {
		log.Warn().Stringer("order_id", o.ID).Stringer("status", o.Status).Msg("service: attempt to remove item of completed order")
		return ErrOrderCompleted
	}

	if err := s.repo.RemoveItem(ctx, itemID, item.OrderID); err != nil {
		return fmt.Errorf("service: failed to remove order item: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("item_id", itemID).Msg("service: item removed from order")
	return nil
}
