package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kebapci/pos-service/internal/order"
	"github.com/kebapci/pos-service/internal/payment"
	"github.com/kebapci/pos-service/internal/table"
)

type TableRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// TableDetailResponse mirrors the original table detail view: the table
// plus its active order (with items) and that order's payments.
type TableDetailResponse struct {
	Table       *table.Table      `json:"table"`
	ActiveOrder *order.Order      `json:"active_order,omitempty"`
	Payments    []payment.Payment `json:"payments,omitempty"`
}

type TableHandler struct {
	tables   table.Service
	orders   order.Service
	payments payment.Service
	validate *validator.Validate
}

func NewTableHandler(tables table.Service, orders order.Service, payments payment.Service) *TableHandler {
	return &TableHandler{
		tables:   tables,
		orders:   orders,
		payments: payments,
		validate: validator.New(),
	}
}

func (h *TableHandler) RegisterRoutes(router chi.Router) {
	router.Get("/tables", h.handleListTables)
	router.Post("/tables", h.handleCreateTable)
	router.Get("/tables/{id}", h.handleGetTable)
	router.Get("/tables/{id}/detail", h.handleTableDetail)
	router.Put("/tables/{id}", h.handleUpdateTable)
	router.Delete("/tables/{id}", h.handleDeleteTable)
}

func (h *TableHandler) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tables.ListTables(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (h *TableHandler) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req TableRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	t, err := h.tables.CreateTable(r.Context(), &table.Table{Name: req.Name, Description: req.Description})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, t)
}

func (h *TableHandler) handleGetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	t, err := h.tables.GetTableByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (h *TableHandler) handleTableDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	t, err := h.tables.GetTableByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	resp := TableDetailResponse{Table: t}

	active, err := h.orders.GetActiveOrderByTable(r.Context(), id)
	if err != nil && !errors.Is(err, order.ErrNoActiveOrder) {
		respondWithServiceError(w, err)
		return
	}
	if active != nil {
		resp.ActiveOrder = active

		payments, err := h.payments.ListPaymentsByOrder(r.Context(), active.ID)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		resp.Payments = payments
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *TableHandler) handleUpdateTable(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req TableRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	t := &table.Table{ID: id, Name: req.Name, Description: req.Description}
	if err := h.tables.UpdateTable(r.Context(), t); err != nil {
		respondWithServiceError(w, err)
		return
	}

	updated, err := h.tables.GetTableByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *TableHandler) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.tables.DeleteTable(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
