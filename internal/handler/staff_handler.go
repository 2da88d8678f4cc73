package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kebapci/pos-service/internal/staff"
)

type CreateStaffRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"omitempty,oneof=server manager"`
}

type UpdateStaffRequest struct {
	FirstName string  `json:"first_name" validate:"required,min=2"`
	LastName  string  `json:"last_name" validate:"required,min=2"`
	Email     string  `json:"email" validate:"required,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role      string  `json:"role" validate:"omitempty,oneof=server manager"`
}

type StaffHandler struct {
	svc      staff.Service
	validate *validator.Validate
}

func NewStaffHandler(svc staff.Service) *StaffHandler {
	return &StaffHandler{svc: svc, validate: validator.New()}
}

func (h *StaffHandler) RegisterRoutes(router chi.Router) {
	router.Get("/staff", h.handleListStaff)
	router.Post("/staff", h.handleCreateStaff)
	router.Get("/staff/{id}", h.handleGetStaff)
	router.Put("/staff/{id}", h.handleUpdateStaff)
	router.Delete("/staff/{id}", h.handleDeleteStaff)
}

func (h *StaffHandler) handleListStaff(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListStaff(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"staff": members})
}

func (h *StaffHandler) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	m := &staff.Staff{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      staff.Role(req.Role),
	}

	created, err := h.svc.CreateStaff(r.Context(), m, req.Password)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *StaffHandler) handleGetStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	m, err := h.svc.GetStaffByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, m)
}

func (h *StaffHandler) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStaffRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	m, err := h.svc.GetStaffByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	m.FirstName = req.FirstName
	m.LastName = req.LastName
	m.Email = req.Email
	if req.Role != "" {
		m.Role = staff.Role(req.Role)
	}

	newPassword := ""
	if req.Password != nil {
		newPassword = *req.Password
	}

	if err := h.svc.UpdateStaff(r.Context(), m, newPassword); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, m)
}

func (h *StaffHandler) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteStaff(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
