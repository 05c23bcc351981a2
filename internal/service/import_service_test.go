package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"smartmart/internal/database"
	"smartmart/internal/domain"
	"smartmart/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newSQLiteDB opens a fresh in-memory database with the full schema applied.
func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	svc, err := database.Open("sqlite://:memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	require.NoError(t, database.RunMigrations(svc.DB(), svc.Dialect(), "../../migrations", zap.NewNop()))

	return svc.DB()
}

func seedCategory(t *testing.T, db *sql.DB, id int64, name string) {
	t.Helper()
	repo := repository.NewCategoryRepository(db)
	require.NoError(t, repo.Create(context.Background(), &domain.Category{ID: id, Name: name}))
}

func TestImportProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts new products with auto-assigned ids", func(t *testing.T) {
		db := newSQLiteDB(t)
		seedCategory(t, db, 1, "Electronics")
		svc := NewImportService(db, zap.NewNop())

		csv := "name,price,category_id\nPhone,199.99,1\nLaptop,999.00,1\n"
		result, err := svc.ImportProducts(ctx, "products.csv", strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 2, result.SuccessCount)
		assert.Empty(t, result.Errors)

		products, err := repository.NewProductRepository(db).List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, int64(1), products[0].ID)
		assert.Equal(t, "Phone", products[0].Name)
		assert.Equal(t, int64(2), products[1].ID)
		assert.Equal(t, "Laptop", products[1].Name)
	})

	t.Run("bad rows are skipped and the rest commits", func(t *testing.T) {
		db := newSQLiteDB(t)
		seedCategory(t, db, 1, "Electronics")
		svc := NewImportService(db, zap.NewNop())

		csv := "name,price,category_id\n" +
			"Phone,199.99,1\n" +
			"Laptop,999.00,1\n" +
			"Ghost,10.00,99\n" +
			"Tablet,299.00,1\n" +
			"Watch,149.00,1\n"
		result, err := svc.ImportProducts(ctx, "products.csv", strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 4, result.SuccessCount)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "row 3")
		assert.Contains(t, result.Errors[0], "category 99 does not exist")

		products, err := repository.NewProductRepository(db).List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, products, 4)
	})

	t.Run("explicit existing id updates in place", func(t *testing.T) {
		db := newSQLiteDB(t)
		seedCategory(t, db, 1, "Electronics")
		productRepo := repository.NewProductRepository(db)
		require.NoError(t, productRepo.Create(ctx, &domain.Product{
			ID:          1,
			Name:        "Old Phone",
			Description: "keep me",
			Price:       100,
			Brand:       "Acme",
			CategoryID:  1,
		}))
		svc := NewImportService(db, zap.NewNop())

		csv := "id,name,price,category_id\n1,New Phone,149.50,1\n"
		result, err := svc.ImportProducts(ctx, "products.csv", strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 1, result.SuccessCount)
		assert.Empty(t, result.Errors)

		updated, err := productRepo.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "New Phone", updated.Name)
		assert.Equal(t, 149.50, updated.Price)
		// Columns absent from the file are left untouched.
		assert.Equal(t, "keep me", updated.Description)
		assert.Equal(t, "Acme", updated.Brand)
	})

	t.Run("invalid price is a row error", func(t *testing.T) {
		db := newSQLiteDB(t)
		seedCategory(t, db, 1, "Electronics")
		svc := NewImportService(db, zap.NewNop())

		csv := "name,price,category_id\nPhone,abc,1\nLaptop,999.00,1\n"
		result, err := svc.ImportProducts(ctx, "products.csv", strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, 1, result.SuccessCount)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "row 1")
		assert.Contains(t, result.Errors[0], "invalid price")
	})

	t.Run("rejects a missing filename", func(t *testing.T) {
		svc := NewImportService(newSQLiteDB(t), zap.NewNop())

		_, err := svc.ImportProducts(ctx, "", strings.NewReader(""))
		assert.ErrorIs(t, err, ErrNoFile)
	})

	t.Run("rejects non-csv uploads", func(t *testing.T) {
		svc := NewImportService(newSQLiteDB(t), zap.NewNop())

		_, err := svc.ImportProducts(ctx, "products.xlsx", strings.NewReader("name,price,category_id\n"))
		assert.ErrorIs(t, err, ErrInvalidFileType)
	})

	t.Run("rejects a header without the required columns", func(t *testing.T) {
		svc := NewImportService(newSQLiteDB(t), zap.NewNop())

		_, err := svc.ImportProducts(ctx, "products.csv", strings.NewReader("name,cost\nPhone,1\n"))
		assert.ErrorIs(t, err, ErrMissingColumns)
	})
}
