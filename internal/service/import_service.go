package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"smartmart/internal/domain"
	"smartmart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoFile means the upload carried no usable file.
	ErrNoFile = errors.New("no file provided")

	// ErrInvalidFileType means the upload is not a .csv file.
	ErrInvalidFileType = errors.New("invalid file type, expected a .csv file")

	// ErrMissingColumns means the header lacks one of the required columns.
	ErrMissingColumns = errors.New("csv must contain the columns: name, price, category_id")
)

// ImportService ingests bulk product uploads. Rows are processed
// independently: a bad row is recorded and skipped, and everything that
// succeeded is committed once at the end of the batch.
type ImportService interface {
	ImportProducts(ctx context.Context, filename string, file io.Reader) (*domain.ImportResult, error)
}

type importService struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewImportService creates a new instance of ImportService
func NewImportService(db *sql.DB, logger *zap.Logger) ImportService {
	return &importService{db: db, logger: logger}
}

// ImportProducts parses a CSV upload and inserts or updates products row by
// row inside a single transaction. A row with an explicit id that already
// exists updates that product; otherwise a new product is inserted, using
// the explicit id when supplied and parseable.
func (s *importService) ImportProducts(ctx context.Context, filename string, file io.Reader) (*domain.ImportResult, error) {
	if filename == "" {
		return nil, ErrNoFile
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, ErrInvalidFileType
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingColumns
	}

	columns := headerIndex(rows[0])
	for _, required := range []string{"name", "price", "category_id"} {
		if _, ok := columns[required]; !ok {
			return nil, ErrMissingColumns
		}
	}

	batchID := uuid.New().String()
	s.logger.Info("Starting product import",
		zap.String("batch_id", batchID),
		zap.String("filename", filename),
		zap.Int("rows", len(rows)-1),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	categoryRepo := repository.NewCategoryRepository(tx)
	productRepo := repository.NewProductRepository(tx)

	result := &domain.ImportResult{Errors: []string{}}

	for i, row := range rows[1:] {
		rowNum := i + 1 // 1-based data row number

		if err := s.importRow(ctx, categoryRepo, productRepo, columns, row); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rowNum, err))
			continue
		}
		result.SuccessCount++
	}

	// Partial success is persisted: rows that errored were skipped before
	// touching storage, everything else commits together.
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import transaction: %w", err)
	}

	s.logger.Info("Product import finished",
		zap.String("batch_id", batchID),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", len(result.Errors)),
	)

	return result, nil
}

// importRow applies a single CSV row. Any returned error is a row-level
// error: it is reported with its row number and does not abort the batch.
func (s *importService) importRow(
	ctx context.Context,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	columns map[string]int,
	row []string,
) error {
	name, ok := field(row, columns, "name")
	if !ok || name == "" {
		return errors.New("missing name")
	}

	rawPrice, _ := field(row, columns, "price")
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", rawPrice)
	}

	rawCategoryID, _ := field(row, columns, "category_id")
	categoryID, err := strconv.ParseInt(rawCategoryID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid category_id %q", rawCategoryID)
	}

	if _, err := categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return fmt.Errorf("category %d does not exist", categoryID)
		}
		return err
	}

	description, hasDescription := field(row, columns, "description")
	brand, hasBrand := field(row, columns, "brand")

	// An explicit id that parses selects update-or-insert-with-id; an
	// absent or unparseable id lets the store assign the next free one.
	var explicitID int64
	if raw, ok := field(row, columns, "id"); ok && raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			explicitID = parsed
		}
	}

	if explicitID > 0 {
		existing, err := productRepo.FindByID(ctx, explicitID)
		if err == nil {
			existing.Name = name
			existing.Price = price
			existing.CategoryID = categoryID
			if hasDescription {
				existing.Description = description
			}
			if hasBrand {
				existing.Brand = brand
			}
			return productRepo.Update(ctx, existing)
		}
		if !errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
	}

	id := explicitID
	if id == 0 {
		next, err := productRepo.NextID(ctx)
		if err != nil {
			return err
		}
		id = next
	}

	return productRepo.Create(ctx, &domain.Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Brand:       brand,
		CategoryID:  categoryID,
	})
}

// headerIndex maps normalized column names to their positions.
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

// field returns the trimmed cell for a named column, reporting whether the
// column exists and the row is long enough to hold it.
func field(row []string, columns map[string]int, name string) (string, bool) {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}
