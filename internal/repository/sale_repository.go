package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"smartmart/internal/domain"
)

var ErrSaleNotFound = errors.New("sale not found")

// SaleRepository defines the interface for sale data access
type SaleRepository interface {
	ListWithDetails(ctx context.Context) ([]*domain.Sale, error)
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	Create(ctx context.Context, sale *domain.Sale) error
	Update(ctx context.Context, sale *domain.Sale) error
	Delete(ctx context.Context, id int64) error
	NextID(ctx context.Context) (int64, error)
	ListRecords(ctx context.Context, filter domain.SaleFilter) ([]*domain.SaleRecord, error)
}

type saleRepository struct {
	db DBTX
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db DBTX) SaleRepository {
	return &saleRepository{db: db}
}

// ListWithDetails retrieves the sales history joined to product and category
// names, newest first
func (r *saleRepository) ListWithDetails(ctx context.Context) ([]*domain.Sale, error) {
	query := `
		SELECT s.id, s.product_id, s.quantity, s.total_price, s.sale_date,
		       p.name, c.name
		FROM sales s
		JOIN products p ON p.id = s.product_id
		JOIN categories c ON c.id = p.category_id
		ORDER BY s.sale_date DESC, s.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale := &domain.Sale{}
		err := rows.Scan(
			&sale.ID,
			&sale.ProductID,
			&sale.Quantity,
			&sale.TotalPrice,
			&sale.Date,
			&sale.ProductName,
			&sale.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

// FindByID retrieves a sale by ID using parameterized queries
func (r *saleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query := `
		SELECT id, product_id, quantity, total_price, sale_date
		FROM sales
		WHERE id = $1
	`

	sale := &domain.Sale{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sale.ID,
		&sale.ProductID,
		&sale.Quantity,
		&sale.TotalPrice,
		&sale.Date,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	return sale, nil
}

// Create inserts a new sale with its caller-assigned id
func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (id, product_id, quantity, total_price, sale_date)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		sale.ID,
		sale.ProductID,
		sale.Quantity,
		sale.TotalPrice,
		sale.Date,
	)

	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

// Update updates a sale's quantity, total price and date
func (r *saleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	query := `
		UPDATE sales
		SET quantity = $2, total_price = $3, sale_date = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, sale.ID, sale.Quantity, sale.TotalPrice, sale.Date)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}

// Delete removes a sale from the database using parameterized queries
func (r *saleRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM sales WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}

// NextID suggests the next free id: max(id)+1, or 1 on an empty table
func (r *saleRepository) NextID(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(id), 0) + 1 FROM sales`

	var next int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next sale id: %w", err)
	}

	return next, nil
}

// ListRecords retrieves the filtered dataset the dashboard aggregates: each
// qualifying sale joined to its product. The same WHERE clause serves every
// aggregation, so chart, top-products and brand-share views never drift.
func (r *saleRepository) ListRecords(ctx context.Context, filter domain.SaleFilter) ([]*domain.SaleRecord, error) {
	query := `
		SELECT s.sale_date, s.quantity, s.total_price,
		       p.id, p.name, COALESCE(p.brand, ''), p.category_id
		FROM sales s
		JOIN products p ON p.id = s.product_id
	`

	where, args := buildSaleFilter(filter)
	query += where

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale records: %w", err)
	}
	defer rows.Close()

	records := []*domain.SaleRecord{}
	for rows.Next() {
		record := &domain.SaleRecord{}
		err := rows.Scan(
			&record.Date,
			&record.Quantity,
			&record.TotalPrice,
			&record.ProductID,
			&record.ProductName,
			&record.Brand,
			&record.CategoryID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale records: %w", err)
	}

	return records, nil
}

// buildSaleFilter renders the shared dashboard filter as a WHERE clause.
// The date range is inclusive on both ends; each bound may be set alone.
func buildSaleFilter(filter domain.SaleFilter) (string, []any) {
	conditions := []string{}
	args := []any{}

	add := func(expr string, value any) {
		conditions = append(conditions, fmt.Sprintf(expr, len(args)+1))
		args = append(args, value)
	}

	if filter.StartDate != nil {
		add("s.sale_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("s.sale_date <= $%d", *filter.EndDate)
	}
	if filter.CategoryID != nil {
		add("p.category_id = $%d", *filter.CategoryID)
	}
	if filter.Brand != nil {
		add("p.brand = $%d", *filter.Brand)
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}
