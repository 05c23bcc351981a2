package domain

// Product represents a product in the catalog. IDs are caller-assignable:
// clients pick an explicit id on create, usually from the next-id hint.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Brand       string  `json:"brand" db:"brand"`
	CategoryID  int64   `json:"category_id" db:"category_id"`

	// CategoryName is populated on reads by joining categories.
	CategoryName string `json:"category_name" db:"category_name"`
}
