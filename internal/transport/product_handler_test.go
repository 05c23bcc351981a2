package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smartmart/internal/domain"
	"smartmart/internal/repository"
	"smartmart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProductRepository struct {
	repository.ProductRepository

	listFn   func(ctx context.Context, categoryID *int64) ([]*domain.Product, error)
	createFn func(ctx context.Context, product *domain.Product) error
	updateFn func(ctx context.Context, product *domain.Product) error
	deleteFn func(ctx context.Context, id int64) error
	nextIDFn func(ctx context.Context) (int64, error)
}

func (m *mockProductRepository) List(ctx context.Context, categoryID *int64) ([]*domain.Product, error) {
	return m.listFn(ctx, categoryID)
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return m.createFn(ctx, product)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return m.updateFn(ctx, product)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

func (m *mockProductRepository) NextID(ctx context.Context) (int64, error) {
	return m.nextIDFn(ctx)
}

type stubImportService struct {
	fn func(ctx context.Context, filename string, file io.Reader) (*domain.ImportResult, error)
}

func (s *stubImportService) ImportProducts(ctx context.Context, filename string, file io.Reader) (*domain.ImportResult, error) {
	return s.fn(ctx, filename, file)
}

func newProductRouter(repo *mockProductRepository, importSvc *stubImportService) chi.Router {
	r := chi.NewRouter()
	NewProductHandler(repo, importSvc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func multipartFile(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestProductCreate(t *testing.T) {
	t.Run("creates a product with its caller-assigned id", func(t *testing.T) {
		var created *domain.Product
		repo := &mockProductRepository{createFn: func(ctx context.Context, product *domain.Product) error {
			created = product
			return nil
		}}

		body := `{"id":7,"name":"Phone","price":199.99,"brand":"Acme","category_id":1}`
		req := httptest.NewRequest(http.MethodPost, "/products/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newProductRouter(repo, nil).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, created)
		assert.Equal(t, int64(7), created.ID)
		assert.Equal(t, "Phone", created.Name)
	})

	t.Run("rejects a duplicate id", func(t *testing.T) {
		repo := &mockProductRepository{createFn: func(ctx context.Context, product *domain.Product) error {
			return repository.ErrProductAlreadyExists
		}}

		body := `{"id":7,"name":"Phone","price":199.99,"category_id":1}`
		req := httptest.NewRequest(http.MethodPost, "/products/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newProductRouter(repo, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "product id already exists")
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products/",
			strings.NewReader(`{"id":7,"price":1,"category_id":1}`))
		rec := httptest.NewRecorder()
		newProductRouter(&mockProductRepository{}, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products/",
			strings.NewReader(`{"id":7,"name":"Phone","price":-1,"category_id":1}`))
		rec := httptest.NewRecorder()
		newProductRouter(&mockProductRepository{}, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductList(t *testing.T) {
	t.Run("passes the category filter through", func(t *testing.T) {
		var gotCategoryID *int64
		repo := &mockProductRepository{listFn: func(ctx context.Context, categoryID *int64) ([]*domain.Product, error) {
			gotCategoryID = categoryID
			return []*domain.Product{{ID: 1, Name: "Phone"}}, nil
		}}

		req := httptest.NewRequest(http.MethodGet, "/products/?category_id=2", nil)
		rec := httptest.NewRecorder()
		newProductRouter(repo, nil).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotCategoryID)
		assert.Equal(t, int64(2), *gotCategoryID)
	})

	t.Run("rejects a non-numeric category filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products/?category_id=shoes", nil)
		rec := httptest.NewRecorder()
		newProductRouter(&mockProductRepository{}, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductUpdate(t *testing.T) {
	t.Run("returns 404 for an unknown product", func(t *testing.T) {
		repo := &mockProductRepository{updateFn: func(ctx context.Context, product *domain.Product) error {
			return repository.ErrProductNotFound
		}}

		body := `{"id":42,"name":"Phone","price":1,"category_id":1}`
		req := httptest.NewRequest(http.MethodPut, "/products/42", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newProductRouter(repo, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("the path id wins over the body id", func(t *testing.T) {
		var updated *domain.Product
		repo := &mockProductRepository{updateFn: func(ctx context.Context, product *domain.Product) error {
			updated = product
			return nil
		}}

		body := `{"id":99,"name":"Phone","price":1,"category_id":1}`
		req := httptest.NewRequest(http.MethodPut, "/products/42", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newProductRouter(repo, nil).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(42), updated.ID)
	})
}

func TestProductDelete(t *testing.T) {
	t.Run("returns 404 for an unknown product", func(t *testing.T) {
		repo := &mockProductRepository{deleteFn: func(ctx context.Context, id int64) error {
			return repository.ErrProductNotFound
		}}

		req := httptest.NewRequest(http.MethodDelete, "/products/42", nil)
		rec := httptest.NewRecorder()
		newProductRouter(repo, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects a delete blocked by sales", func(t *testing.T) {
		repo := &mockProductRepository{deleteFn: func(ctx context.Context, id int64) error {
			return repository.ErrProductHasSales
		}}

		req := httptest.NewRequest(http.MethodDelete, "/products/42", nil)
		rec := httptest.NewRecorder()
		newProductRouter(repo, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "associated sales")
	})
}

func TestProductNextID(t *testing.T) {
	repo := &mockProductRepository{nextIDFn: func(ctx context.Context) (int64, error) {
		return 7, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/products/next-id", nil)
	rec := httptest.NewRecorder()
	newProductRouter(repo, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, int64(7), payload["next_id"])
}

func TestProductUpload(t *testing.T) {
	t.Run("full success is a 200", func(t *testing.T) {
		importSvc := &stubImportService{fn: func(ctx context.Context, filename string, file io.Reader) (*domain.ImportResult, error) {
			return &domain.ImportResult{SuccessCount: 3, Errors: []string{}}, nil
		}}

		body, contentType := multipartFile(t, "file", "products.csv", "name,price,category_id\n")
		req := httptest.NewRequest(http.MethodPost, "/products/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newProductRouter(&mockProductRepository{}, importSvc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var payload struct {
			Message      string   `json:"message"`
			SuccessCount int      `json:"success_count"`
			Errors       []string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, 3, payload.SuccessCount)
		assert.Empty(t, payload.Errors)
	})

	t.Run("partial success is a 207", func(t *testing.T) {
		importSvc := &stubImportService{fn: func(ctx context.Context, filename string, file io.Reader) (*domain.ImportResult, error) {
			return &domain.ImportResult{
				SuccessCount: 2,
				Errors:       []string{"row 3: category 99 does not exist"},
			}, nil
		}}

		body, contentType := multipartFile(t, "file", "products.csv", "name,price,category_id\n")
		req := httptest.NewRequest(http.MethodPost, "/products/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newProductRouter(&mockProductRepository{}, importSvc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusMultiStatus, rec.Code)
		assert.Contains(t, rec.Body.String(), "row 3")
	})

	t.Run("a rejected file type is a 400", func(t *testing.T) {
		importSvc := &stubImportService{fn: func(ctx context.Context, filename string, file io.Reader) (*domain.ImportResult, error) {
			return nil, service.ErrInvalidFileType
		}}

		body, contentType := multipartFile(t, "file", "products.xlsx", "bytes")
		req := httptest.NewRequest(http.MethodPost, "/products/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newProductRouter(&mockProductRepository{}, importSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("a request without a file part is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products/upload", strings.NewReader(""))
		rec := httptest.NewRecorder()
		newProductRouter(&mockProductRepository{}, &stubImportService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "no file provided")
	})
}
