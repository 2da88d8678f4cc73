package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebapci/pos-service/internal/catalog"
	"github.com/kebapci/pos-service/internal/order"
	"github.com/kebapci/pos-service/internal/table"
)

type mockRepository struct {
	createFunc           func(ctx context.Context, o *order.Order) error
	getByIDFunc          func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	getActiveByTableFunc func(ctx context.Context, tableID uuid.UUID) (*order.Order, error)
	updateStatusFunc     func(ctx context.Context, id uuid.UUID, status order.Status, closedAt *time.Time) error
	getItemFunc          func(ctx context.Context, itemID uuid.UUID) (*order.Item, error)
	addItemFunc          func(ctx context.Context, item *order.Item) error
	updateItemFunc       func(ctx context.Context, item *order.Item) error
	removeItemFunc       func(ctx context.Context, itemID, orderID uuid.UUID) error
	replaceItemsFunc     func(ctx context.Context, o *order.Order, items []order.Item) error
}

func (m *mockRepository) Create(ctx context.Context, o *order.Order) error {
	return m.createFunc(ctx, o)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) List(ctx context.Context) ([]order.Order, error) {
	return []order.Order{}, nil
}

func (m *mockRepository) ListActive(ctx context.Context) ([]order.Order, error) {
	return []order.Order{}, nil
}

func (m *mockRepository) GetActiveByTable(ctx context.Context, tableID uuid.UUID) (*order.Order, error) {
	if m.getActiveByTableFunc == nil {
		return nil, order.ErrNoActiveOrder
	}
	return m.getActiveByTableFunc(ctx, tableID)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status, closedAt *time.Time) error {
	return m.updateStatusFunc(ctx, id, status, closedAt)
}

func (m *mockRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*order.Item, error) {
	return m.getItemFunc(ctx, itemID)
}

func (m *mockRepository) AddItem(ctx context.Context, item *order.Item) error {
	return m.addItemFunc(ctx, item)
}

func (m *mockRepository) UpdateItem(ctx context.Context, item *order.Item) error {
	return m.updateItemFunc(ctx, item)
}

func (m *mockRepository) RemoveItem(ctx context.Context, itemID, orderID uuid.UUID) error {
	return m.removeItemFunc(ctx, itemID, orderID)
}

func (m *mockRepository) ReplaceItems(ctx context.Context, o *order.Order, items []order.Item) error {
	return m.replaceItemsFunc(ctx, o, items)
}

type stubProducts struct {
	products map[uuid.UUID]*catalog.Product
}

func (s *stubProducts) GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

type stubTables struct {
	tables map[uuid.UUID]*table.Table
}

func (s *stubTables) GetTableByID(ctx context.Context, id uuid.UUID) (*table.Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, table.ErrTableNotFound
	}
	return t, nil
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func newFixture(t *testing.T) (uuid.UUID, uuid.UUID, uuid.UUID, *stubProducts, *stubTables) {
	t.Helper()
	tableID := mustUUID(t)
	staffID := mustUUID(t)
	productID := mustUUID(t)

	products := &stubProducts{products: map[uuid.UUID]*catalog.Product{
		productID: {ID: productID, Name: "Adana kebap", Price: decimal.RequireFromString("180")},
	}}
	tables := &stubTables{tables: map[uuid.UUID]*table.Table{
		tableID: {ID: tableID, Name: "T1"},
	}}
	return tableID, staffID, productID, products, tables
}

func TestService_CreateOrder(t *testing.T) {
	tableID, staffID, productID, products, tables := newFixture(t)

	tests := []struct {
		name                 string
		input                order.CreateInput
		getActiveByTableFunc func(ctx context.Context, tableID uuid.UUID) (*order.Order, error)
		wantErrIs            error
		wantTotal            string
		wantItems            []order.Item
	}{
		{
			name:      "no_items",
			input:     order.CreateInput{TableID: tableID, StaffID: staffID},
			wantErrIs: order.ErrNoItems,
		},
		{
			name: "table_occupied",
			input: order.CreateInput{
				TableID: tableID,
				StaffID: staffID,
				Items:   []order.ItemInput{{ProductID: productID, Quantity: 1}},
			},
			getActiveByTableFunc: func(ctx context.Context, tableID uuid.UUID) (*order.Order, error) {
				return &order.Order{Status: order.StatusPreparing}, nil
			},
			wantErrIs: order.ErrTableOccupied,
		},
		{
			name: "unknown_product",
			input: order.CreateInput{
				TableID: tableID,
				StaffID: staffID,
				Items:   []order.ItemInput{{ProductID: mustUUID(t), Quantity: 1}},
			},
			wantErrIs: catalog.ErrProductNotFound,
		},
		{
			name: "successful_creation",
			input: order.CreateInput{
				TableID: tableID,
				StaffID: staffID,
				Items:   []order.ItemInput{{ProductID: productID, Quantity: 2}},
			},
			wantTotal: "360",
			wantItems: []order.Item{
				{ProductID: productID, Quantity: 2, Price: decimal.RequireFromString("180"), Status: order.ItemStatusPreparing},
			},
		},
		{
			name: "duplicate_products_merged",
			input: order.CreateInput{
				TableID: tableID,
				StaffID: staffID,
				Items: []order.ItemInput{
					{ProductID: productID, Quantity: 2},
					{ProductID: productID, Quantity: 3},
				},
			},
			wantTotal: "900",
			wantItems: []order.Item{
				{ProductID: productID, Quantity: 5, Price: decimal.RequireFromString("180"), Status: order.ItemStatusPreparing},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *order.Order
			repo := &mockRepository{
				createFunc: func(ctx context.Context, o *order.Order) error {
					created = o
					return nil
				},
				getActiveByTableFunc: tt.getActiveByTableFunc,
			}
			svc := order.NewService(repo, products, tables)

			o, err := svc.CreateOrder(context.Background(), tt.input)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, created, "repository must not be touched on guard failure")
				return
			}

			require.NoError(t, err)
			require.NotNil(t, created)
			assert.Equal(t, order.StatusPreparing, o.Status)
			assert.True(t, o.Total.Equal(decimal.RequireFromString(tt.wantTotal)), "got total %s", o.Total)

			// prices are captured from the catalog at add-time
			diff := cmp.Diff(tt.wantItems, o.Items,
				cmpopts.IgnoreFields(order.Item{}, "ID", "CreatedAt", "UpdatedAt"),
				cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
			)
			assert.Empty(t, diff)
		})
	}
}

func TestService_CreateOrder_UnknownTable(t *testing.T) {
	_, staffID, productID, products, tables := newFixture(t)

	repo := &mockRepository{}
	svc := order.NewService(repo, products, tables)

	_, err := svc.CreateOrder(context.Background(), order.CreateInput{
		TableID: mustUUID(t),
		StaffID: staffID,
		Items:   []order.ItemInput{{ProductID: productID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, table.ErrTableNotFound)
}

func TestService_AddItem_FinalStatusGuard(t *testing.T) {
	tableID, _, productID, products, tables := newFixture(t)

	for _, status := range []order.Status{order.StatusClosed, order.StatusPaid, order.StatusCancelled} {
		t.Run(status.String(), func(t *testing.T) {
			orderID := mustUUID(t)
			addItemCalled := false
			repo := &mockRepository{
				getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
					return &order.Order{ID: orderID, TableID: tableID, Status: status}, nil
				},
				addItemFunc: func(ctx context.Context, item *order.Item) error {
					addItemCalled = true
					return nil
				},
			}
			svc := order.NewService(repo, products, tables)

			_, err := svc.AddItem(context.Background(), orderID, order.ItemInput{ProductID: productID, Quantity: 1})
			assert.ErrorIs(t, err, order.ErrOrderCompleted)
			assert.False(t, addItemCalled, "item must not be persisted for a completed order")
		})
	}
}

func TestService_AddItem_Success(t *testing.T) {
	tableID, _, productID, products, tables := newFixture(t)
	orderID := mustUUID(t)

	var added *order.Item
	repo := &mockRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, TableID: tableID, Status: order.StatusPreparing}, nil
		},
		addItemFunc: func(ctx context.Context, item *order.Item) error {
			added = item
			return nil
		},
	}
	svc := order.NewService(repo, products, tables)

	item, err := svc.AddItem(context.Background(), orderID, order.ItemInput{ProductID: productID, Quantity: 3})
	require.NoError(t, err)
	require.NotNil(t, added)
	assert.Equal(t, orderID, item.OrderID)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, order.ItemStatusPreparing, item.Status)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("180")))
}

func TestService_UpdateItem_FinalStatusGuard(t *testing.T) {
	tableID, _, productID, products, tables := newFixture(t)
	orderID := mustUUID(t)
	itemID := mustUUID(t)

	repo := &mockRepository{
		getItemFunc: func(ctx context.Context, id uuid.UUID) (*order.Item, error) {
			return &order.Item{ID: itemID, OrderID: orderID, ProductID: productID, Quantity: 1}, nil
		},
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, TableID: tableID, Status: order.StatusPaid}, nil
		},
	}
	svc := order.NewService(repo, products, tables)

	_, err := svc.UpdateItem(context.Background(), itemID, order.UpdateItemInput{Quantity: 2, Status: order.ItemStatusReady})
	assert.ErrorIs(t, err, order.ErrOrderCompleted)

	err = svc.RemoveItem(context.Background(), itemID)
	assert.ErrorIs(t, err, order.ErrOrderCompleted)
}

func TestService_CancelOrder(t *testing.T) {
	tests := []struct {
		name      string
		status    order.Status
		wantErrIs error
	}{
		{name: "paid_order_cannot_be_cancelled", status: order.StatusPaid, wantErrIs: order.ErrOrderPaid},
		{name: "preparing_order_cancelled", status: order.StatusPreparing},
		{name: "closed_order_cancelled", status: order.StatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tableID, _, _, products, tables := newFixture(t)
			orderID := mustUUID(t)

			var gotStatus order.Status
			var gotClosedAt *time.Time
			repo := &mockRepository{
				getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
					return &order.Order{ID: orderID, TableID: tableID, Status: tt.status}, nil
				},
				updateStatusFunc: func(ctx context.Context, id uuid.UUID, status order.Status, closedAt *time.Time) error {
					gotStatus = status
					gotClosedAt = closedAt
					return nil
				},
			}
			svc := order.NewService(repo, products, tables)

			o, err := svc.CancelOrder(context.Background(), orderID)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, order.StatusCancelled, gotStatus)
			require.NotNil(t, gotClosedAt)
			assert.Equal(t, order.StatusCancelled, o.Status)
		})
	}
}

func TestService_UpdateOrder_StampsClosedAt(t *testing.T) {
	tableID, staffID, productID, products, tables := newFixture(t)
	orderID := mustUUID(t)

	stored := &order.Order{
		ID:      orderID,
		TableID: tableID,
		StaffID: staffID,
		Status:  order.StatusDelivered,
		Total:   decimal.RequireFromString("180"),
	}

	var replaced *order.Order
	repo := &mockRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			cp := *stored
			return &cp, nil
		},
		replaceItemsFunc: func(ctx context.Context, o *order.Order, items []order.Item) error {
			replaced = o
			return nil
		},
	}
	svc := order.NewService(repo, products, tables)

	_, err := svc.UpdateOrder(context.Background(), orderID, order.UpdateInput{
		Status: order.StatusClosed,
		Items:  []order.ItemInput{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, replaced)
	assert.Equal(t, order.StatusClosed, replaced.Status)
	assert.NotNil(t, replaced.ClosedAt, "transition into closed must stamp the closed timestamp")

	// already closed: no fresh stamp is forced
	stored.Status = order.StatusClosed
	_, err = svc.UpdateOrder(context.Background(), orderID, order.UpdateInput{
		Status: order.StatusClosed,
		Items:  []order.ItemInput{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Nil(t, replaced.ClosedAt)
}
