package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/kebapci/pos-service/internal/catalog"
)

type CategoryRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type ProductRequest struct {
	CategoryID  uuid.UUID       `json:"category_id" validate:"required"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	IsActive    *bool           `json:"is_active,omitempty"`
	ImagePath   *string         `json:"image_path,omitempty"`
}

type CatalogHandler struct {
	svc      catalog.Service
	validate *validator.Validate
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc, validate: validator.New()}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/categories", h.handleListCategories)
	router.Post("/categories", h.handleCreateCategory)
	router.Get("/categories/{id}", h.handleGetCategory)
	router.Put("/categories/{id}", h.handleUpdateCategory)
	router.Put("/categories/{id}/toggle-status", h.handleToggleCategory)
	router.Delete("/categories/{id}", h.handleDeleteCategory)

	router.Get("/products", h.handleListProducts)
	router.Post("/products", h.handleCreateProduct)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Put("/products/{id}/toggle-status", h.handleToggleProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func onlyActive(r *http.Request) bool {
	return r.URL.Query().Get("active") == "true"
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context(), onlyActive(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *CatalogHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	c := &catalog.Category{Name: req.Name, IsActive: true}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	created, err := h.svc.CreateCategory(r.Context(), c)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	c, err := h.svc.GetCategoryByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}

	c, err := h.svc.GetCategoryByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	c.Name = req.Name
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := h.svc.UpdateCategory(r.Context(), c); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	c, err := h.svc.ToggleCategoryActive(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context(), onlyActive(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *CatalogHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}
	if req.Price.Cmp(decimal.Zero) < 0 {
		respondWithError(w, http.StatusBadRequest, codeValidationFailed, "price must be non-negative")
		return
	}

	p := &catalog.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
		ImagePath:   req.ImagePath,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	created, err := h.svc.CreateProduct(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetProductByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeBody(w, r, &req) || !validateBody(w, h.validate, req) {
		return
	}
	if req.Price.Cmp(decimal.Zero) < 0 {
		respondWithError(w, http.StatusBadRequest, codeValidationFailed, "price must be non-negative")
		return
	}

	p, err := h.svc.GetProductByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	p.CategoryID = req.CategoryID
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = req.Stock
	p.ImagePath = req.ImagePath
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := h.svc.UpdateProduct(r.Context(), p); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) handleToggleProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.ToggleProductActive(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
