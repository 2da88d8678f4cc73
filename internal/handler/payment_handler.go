package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/kebapci/pos-service/internal/payment"
)

type AddPaymentRequest struct {
	OrderID uuid.UUID       `json:"order_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method" validate:"required,oneof=cash card online voucher other"`
	Note    *string         `json:"note,omitempty"`
}

type UpdatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required,oneof=cash card online voucher other"`
	Status string          `json:"status" validate:"required,oneof=pending paid cancelled"`
	Note   *string         `json:"note,omitempty"`
}

type PaymentHandler struct {
	svc      payment.Service
	validate *validator.Validate
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc, validate: validator.New()}
}

func (h *PaymentHandler) RegisterRoutes(router chi.Router) {
	router.Get("/payments", h.handleListPayments)
	router.Post("/payments", h.handleAddPayment)
	router.Get("/payments/{id}", h.handleGetPayment)
	router.Put("/payments/{id}", h.handleUpdatePayment)
	router.Post("/payments/{id}/cancel", h.handleCancelPayment)
	router.Get("/orders/{id}/payments", h.handleListOrderPayments)
	router.Get("/orders/{id}/remaining", h.handleRemainingAmount)
}

func (h *PaymentHandler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPayments(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *PaymentHandler) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req AddPaymentRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	p, err := h.svc.AddPayment(r.Context(), payment.AddInput{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Method:  payment.Method(req.Method),
		Note:    req.Note,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetPaymentByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	p, err := h.svc.UpdatePayment(r.Context(), id, payment.UpdateInput{
		Amount: req.Amount,
		Method: payment.Method(req.Method),
		Status: payment.Status(req.Status),
		Note:   req.Note,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.CancelPayment(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) handleListOrderPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.svc.ListPaymentsByOrder(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *PaymentHandler) handleRemainingAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	remaining, err := h.svc.RemainingAmount(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"remaining_amount": remaining.String()})
}
