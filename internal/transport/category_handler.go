package transport

import (
	"errors"
	"net/http"

	"smartmart/internal/domain"
	"smartmart/internal/middleware"
	"smartmart/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryRepo repository.CategoryRepository, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

// List returns all categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Create adds a new category. The id is assigned by the server; duplicate
// names are rejected.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.categoryRepo.FindByName(r.Context(), req.Name)
	if err == nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "category already exists")
		return
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		h.logger.Error("Failed to check category name", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	id, err := h.categoryRepo.NextID(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute next category id", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	category := &domain.Category{ID: id, Name: req.Name}
	if err := h.categoryRepo.Create(r.Context(), category); err != nil {
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	h.logger.Info("Category created", zap.Int64("category_id", id), zap.String("name", req.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"message": "category created",
	})
}
