package order_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kebapci/pos-service/internal/order"
)

func TestStatus_IsFinal(t *testing.T) {
	tests := []struct {
		status order.Status
		final  bool
	}{
		{order.StatusPreparing, false},
		{order.StatusReady, false},
		{order.StatusDelivered, false},
		{order.StatusClosed, true},
		{order.StatusPaid, true},
		{order.StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.final, tt.status.IsFinal())
		})
	}
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []order.Item
		want  string
	}{
		{
			name:  "no_items",
			items: nil,
			want:  "0",
		},
		{
			name: "single_item",
			items: []order.Item{
				{Price: decimal.RequireFromString("180"), Quantity: 2},
			},
			want: "360",
		},
		{
			name: "multiple_items",
			items: []order.Item{
				{Price: decimal.RequireFromString("12.50"), Quantity: 3},
				{Price: decimal.RequireFromString("4.25"), Quantity: 1},
			},
			want: "41.75",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := order.ComputeTotal(tt.items)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestItem_LineTotal(t *testing.T) {
	item := order.Item{Price: decimal.RequireFromString("7.90"), Quantity: 4}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("31.60")))
}
