package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"smartmart/internal/domain"
	"smartmart/internal/repository"

	"go.uber.org/zap"
)

// SeedService populates the store from the static CSV fixtures the first
// time the service boots against an empty database.
type SeedService interface {
	Run(ctx context.Context) error
}

type seedService struct {
	db     *sql.DB
	dir    string
	logger *zap.Logger
}

// NewSeedService creates a seed loader reading categories.csv, products.csv
// and sales.csv from dir.
func NewSeedService(db *sql.DB, dir string, logger *zap.Logger) SeedService {
	return &seedService{db: db, dir: dir, logger: logger}
}

// Run loads the seed files when the products table is empty. Rows whose id
// already exists are left untouched, and the whole load commits once.
func (s *seedService) Run(ctx context.Context) error {
	productRepo := repository.NewProductRepository(s.db)

	populated, err := productRepo.Any(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing data: %w", err)
	}
	if populated {
		s.logger.Info("Database already contains data, skipping seed")
		return nil
	}

	s.logger.Info("Seeding database from CSV fixtures", zap.String("dir", s.dir))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	categories, err := s.seedCategories(ctx, tx)
	if err != nil {
		return err
	}
	products, err := s.seedProducts(ctx, tx)
	if err != nil {
		return err
	}
	sales, err := s.seedSales(ctx, tx)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	s.logger.Info("Seed completed",
		zap.Int("categories", categories),
		zap.Int("products", products),
		zap.Int("sales", sales),
	)

	return nil
}

func (s *seedService) seedCategories(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, columns, err := s.readCSV("categories.csv")
	if err != nil {
		return 0, err
	}

	repo := repository.NewCategoryRepository(tx)
	count := 0
	for _, row := range rows {
		id, err := requireInt(row, columns, "id")
		if err != nil {
			return count, fmt.Errorf("categories.csv: %w", err)
		}
		name, _ := field(row, columns, "name")

		if _, err := repo.FindByID(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrCategoryNotFound) {
			return count, err
		}

		if err := repo.Create(ctx, &domain.Category{ID: id, Name: name}); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func (s *seedService) seedProducts(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, columns, err := s.readCSV("products.csv")
	if err != nil {
		return 0, err
	}

	repo := repository.NewProductRepository(tx)
	count := 0
	for _, row := range rows {
		id, err := requireInt(row, columns, "id")
		if err != nil {
			return count, fmt.Errorf("products.csv: %w", err)
		}

		if _, err := repo.FindByID(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrProductNotFound) {
			return count, err
		}

		categoryID, err := requireInt(row, columns, "category_id")
		if err != nil {
			return count, fmt.Errorf("products.csv: %w", err)
		}
		price, err := requireFloat(row, columns, "price")
		if err != nil {
			return count, fmt.Errorf("products.csv: %w", err)
		}
		name, _ := field(row, columns, "name")
		description, _ := field(row, columns, "description")
		brand, _ := field(row, columns, "brand")

		product := &domain.Product{
			ID:          id,
			Name:        name,
			Description: description,
			Price:       price,
			Brand:       brand,
			CategoryID:  categoryID,
		}
		if err := repo.Create(ctx, product); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func (s *seedService) seedSales(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, columns, err := s.readCSV("sales.csv")
	if err != nil {
		return 0, err
	}

	repo := repository.NewSaleRepository(tx)
	count := 0
	for _, row := range rows {
		id, err := requireInt(row, columns, "id")
		if err != nil {
			return count, fmt.Errorf("sales.csv: %w", err)
		}

		if _, err := repo.FindByID(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrSaleNotFound) {
			return count, err
		}

		productID, err := requireInt(row, columns, "product_id")
		if err != nil {
			return count, fmt.Errorf("sales.csv: %w", err)
		}
		quantity, err := requireInt(row, columns, "quantity")
		if err != nil {
			return count, fmt.Errorf("sales.csv: %w", err)
		}
		totalPrice, err := requireFloat(row, columns, "total_price")
		if err != nil {
			return count, fmt.Errorf("sales.csv: %w", err)
		}
		date, _ := field(row, columns, "date")

		sale := &domain.Sale{
			ID:         id,
			ProductID:  productID,
			Quantity:   quantity,
			TotalPrice: totalPrice,
			Date:       date,
		}
		if err := repo.Create(ctx, sale); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

// readCSV reads one seed file and returns its data rows and column index.
func (s *seedService) readCSV(name string) ([][]string, map[string]int, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open seed file %s: %w", name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse seed file %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("seed file %s is empty", name)
	}

	return rows[1:], headerIndex(rows[0]), nil
}

func requireInt(row []string, columns map[string]int, name string) (int64, error) {
	raw, ok := field(row, columns, name)
	if !ok {
		return 0, fmt.Errorf("missing column %s", name)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}

func requireFloat(row []string, columns map[string]int, name string) (float64, error) {
	raw, ok := field(row, columns, name)
	if !ok {
		return 0, fmt.Errorf("missing column %s", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}
