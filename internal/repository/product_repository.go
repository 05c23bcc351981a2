package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartmart/internal/database"
	"smartmart/internal/domain"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product id already exists")

	// ErrProductHasSales is returned when a delete is blocked by sales
	// referencing the product. Deletion is rejected, never cascaded.
	ErrProductHasSales = errors.New("product has associated sales")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context, categoryID *int64) ([]*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	NextID(ctx context.Context) (int64, error)
	Any(ctx context.Context) (bool, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// List retrieves products with their category name, optionally filtered by
// category
func (r *productRepository) List(ctx context.Context, categoryID *int64) ([]*domain.Product, error) {
	query := `
		SELECT p.id, p.name, COALESCE(p.description, ''), p.price,
		       COALESCE(p.brand, ''), p.category_id, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
	`
	args := []any{}

	if categoryID != nil {
		query += ` WHERE p.category_id = $1`
		args = append(args, *categoryID)
	}

	query += ` ORDER BY p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Brand,
			&product.CategoryID,
			&product.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT p.id, p.name, COALESCE(p.description, ''), p.price,
		       COALESCE(p.brand, ''), p.category_id, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Brand,
		&product.CategoryID,
		&product.CategoryName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Create inserts a new product with its caller-assigned id
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, brand, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Brand,
		product.CategoryID,
	)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, brand = $5, category_id = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Brand,
		product.CategoryID,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product. A product referenced by sales cannot be deleted.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrProductHasSales
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// NextID suggests the next free id: max(id)+1, or 1 on an empty table
func (r *productRepository) NextID(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(id), 0) + 1 FROM products`

	var next int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next product id: %w", err)
	}

	return next, nil
}

// Any reports whether at least one product exists. The seed loader uses it
// as its emptiness guard.
func (r *productRepository) Any(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for products: %w", err)
	}

	return exists, nil
}
