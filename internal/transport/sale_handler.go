package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"smartmart/internal/domain"
	"smartmart/internal/middleware"
	"smartmart/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateSaleRequest represents the sale creation payload. TotalPrice is
// caller-supplied and never recomputed from the product price.
type CreateSaleRequest struct {
	ID         int64   `json:"id" validate:"required,gt=0"`
	ProductID  int64   `json:"product_id" validate:"required,gt=0"`
	Quantity   int64   `json:"quantity" validate:"required,gt=0"`
	TotalPrice float64 `json:"total_price" validate:"gte=0"`
	Date       string  `json:"date" validate:"required"`
}

// UpdateSaleRequest represents the sale update payload; the date is optional
type UpdateSaleRequest struct {
	Quantity   int64   `json:"quantity" validate:"required,gt=0"`
	TotalPrice float64 `json:"total_price" validate:"gte=0"`
	Date       string  `json:"date"`
}

// SaleHandler handles HTTP requests for sale operations
type SaleHandler struct {
	saleRepo repository.SaleRepository
	logger   *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleRepo repository.SaleRepository, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleRepo: saleRepo,
		logger:   logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/next-id", h.NextID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns the sales history, newest first, with product and category
// names joined in
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := h.saleRepo.ListWithDetails(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

// Create records a new sale with its caller-assigned id
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		middleware.RespondWithError(w, http.StatusInternalServerError, "invalid date, expected YYYY-MM-DD")
		return
	}

	sale := &domain.Sale{
		ID:         req.ID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		TotalPrice: req.TotalPrice,
		Date:       date.Format(domain.DateLayout),
	}

	if err := h.saleRepo.Create(r.Context(), sale); err != nil {
		h.logger.Error("Failed to create sale", zap.Int64("sale_id", req.ID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create sale")
		return
	}

	h.logger.Info("Sale created", zap.Int64("sale_id", req.ID), zap.Int64("product_id", req.ProductID))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "sale created"})
}

// Update replaces a sale's quantity, total price and, when supplied, date
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	var req UpdateSaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.saleRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to find sale", zap.Int64("sale_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update sale")
		return
	}

	sale.Quantity = req.Quantity
	sale.TotalPrice = req.TotalPrice
	if req.Date != "" {
		date, err := time.Parse(domain.DateLayout, req.Date)
		if err != nil {
			middleware.RespondWithError(w, http.StatusInternalServerError, "invalid date, expected YYYY-MM-DD")
			return
		}
		sale.Date = date.Format(domain.DateLayout)
	}

	if err := h.saleRepo.Update(r.Context(), sale); err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to update sale", zap.Int64("sale_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "sale updated"})
}

// Delete removes a sale
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	if err := h.saleRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to delete sale", zap.Int64("sale_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "sale deleted"})
}

// NextID suggests the next free sale id
func (h *SaleHandler) NextID(w http.ResponseWriter, r *http.Request) {
	next, err := h.saleRepo.NextID(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute next sale id", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute next id")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]int64{"next_id": next})
}
