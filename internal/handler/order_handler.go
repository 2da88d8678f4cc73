package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/kebapci/pos-service/internal/order"
	"github.com/kebapci/pos-service/internal/payment"
)

type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Note      *string   `json:"note,omitempty"`
}

type CreateOrderRequest struct {
	TableID uuid.UUID        `json:"table_id" validate:"required"`
	StaffID uuid.UUID        `json:"staff_id" validate:"required"`
	Note    *string          `json:"note,omitempty"`
	Items   []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	Note   *string          `json:"note,omitempty"`
	Status string           `json:"status" validate:"required,oneof=preparing ready delivered closed paid cancelled"`
	Items  []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Note      *string   `json:"note,omitempty"`
}

type UpdateItemRequest struct {
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Note     *string `json:"note,omitempty"`
	Status   string  `json:"status" validate:"required,oneof=preparing ready delivered cancelled"`
}

// OrderDetailResponse is the order together with its payment ledger and the
// derived remaining amount.
type OrderDetailResponse struct {
	Order     *order.Order      `json:"order"`
	Payments  []payment.Payment `json:"payments"`
	Remaining string            `json:"remaining_amount"`
}

type OrderHandler struct {
	orders   order.Service
	payments payment.Service
	validate *validator.Validate
}

func NewOrderHandler(orders order.Service, payments payment.Service) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments, validate: validator.New()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/active", h.handleListActiveOrders)
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Get("/orders/{id}/detail", h.handleOrderDetail)
	router.Put("/orders/{id}", h.handleUpdateOrder)
	router.Post("/orders/{id}/cancel", h.handleCancelOrder)
	router.Post("/orders/{id}/items", h.handleAddItem)
	router.Put("/orders/items/{itemID}", h.handleUpdateItem)
	router.Delete("/orders/items/{itemID}", h.handleRemoveItem)
}

func toItemInputs(inputs []OrderItemInput) []order.ItemInput {
	items := make([]order.ItemInput, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, order.ItemInput{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Note:      in.Note,
		})
	}
	return items
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) handleListActiveOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListActiveOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), order.CreateInput{
		TableID: req.TableID,
		StaffID: req.StaffID,
		Note:    req.Note,
		Items:   toItemInputs(req.Items),
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.orders.GetOrderByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.orders.GetOrderByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	payments, err := h.payments.ListPaymentsByOrder(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	remaining, err := h.payments.RemainingAmount(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, OrderDetailResponse{
		Order:     o,
		Payments:  payments,
		Remaining: remaining.String(),
	})
}

func (h *OrderHandler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	o, err := h.orders.UpdateOrder(r.Context(), id, order.UpdateInput{
		Note:   req.Note,
		Status: order.Status(req.Status),
		Items:  toItemInputs(req.Items),
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	o, err := h.orders.CancelOrder(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	item, err := h.orders.AddItem(r.Context(), id, order.ItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Note:      req.Note,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *OrderHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseUUIDParam(w, r, "itemID")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	item, err := h.orders.UpdateItem(r.Context(), itemID, order.UpdateItemInput{
		Quantity: req.Quantity,
		Note:     req.Note,
		Status:   order.ItemStatus(req.Status),
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *OrderHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseUUIDParam(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.orders.RemoveItem(r.Context(), itemID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
