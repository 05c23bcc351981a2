package transport

import (
	"errors"
	"net/http"
	"strconv"

	"smartmart/internal/domain"
	"smartmart/internal/middleware"
	"smartmart/internal/repository"
	"smartmart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest represents the product create/update payload. IDs are
// caller-assigned on create; clients usually take the next-id hint first.
type ProductRequest struct {
	ID          int64   `json:"id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Brand       string  `json:"brand"`
	CategoryID  int64   `json:"category_id" validate:"required"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productRepo   repository.ProductRepository
	importService service.ImportService
	logger        *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productRepo repository.ProductRepository, importService service.ImportService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productRepo:   productRepo,
		importService: importService,
		logger:        logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/next-id", h.NextID)
		r.Post("/upload", h.Upload)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns all products, optionally filtered by category
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	products, err := h.productRepo.List(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create adds a new product with its caller-assigned id
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product := &domain.Product{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Brand:       req.Brand,
		CategoryID:  req.CategoryID,
	}

	if err := h.productRepo.Create(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			middleware.RespondWithError(w, http.StatusBadRequest, "product id already exists")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", req.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "product created"})
}

// Update replaces a product's mutable fields
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product := &domain.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Brand:       req.Brand,
		CategoryID:  req.CategoryID,
	}

	if err := h.productRepo.Update(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to update product", zap.Int64("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product updated"})
}

// Delete removes a product. Deletes blocked by existing sales are rejected.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productRepo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, repository.ErrProductHasSales):
			middleware.RespondWithError(w, http.StatusBadRequest, "product has associated sales")
		default:
			h.logger.Error("Failed to delete product", zap.Int64("product_id", id), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// NextID suggests the next free product id
func (h *ProductHandler) NextID(w http.ResponseWriter, r *http.Request) {
	next, err := h.productRepo.NextID(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute next product id", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute next id")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]int64{"next_id": next})
}

// Upload ingests a CSV of products. Row-level failures do not abort the
// batch: 200 means every row applied, 207 means partial success.
func (h *ProductHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	result, err := h.importService.ImportProducts(r.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFile),
			errors.Is(err, service.ErrInvalidFileType),
			errors.Is(err, service.ErrMissingColumns):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Product import failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process file: "+err.Error())
		}
		return
	}

	status := http.StatusOK
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}

	middleware.RespondWithJSON(w, status, map[string]any{
		"message":       "processing complete",
		"success_count": result.SuccessCount,
		"errors":        result.Errors,
	})
}
