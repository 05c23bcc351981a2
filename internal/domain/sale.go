package domain

// DateLayout is the calendar date format used on the wire and in storage.
// Sale dates carry no time component.
const DateLayout = "2006-01-02"

// Sale represents a completed sale of a product. TotalPrice is supplied by
// the caller and is intentionally independent of product price times quantity
// (discounts and price changes are allowed).
type Sale struct {
	ID         int64   `json:"id" db:"id"`
	ProductID  int64   `json:"product_id" db:"product_id"`
	Quantity   int64   `json:"quantity" db:"quantity"`
	TotalPrice float64 `json:"total_price" db:"total_price"`
	Date       string  `json:"date" db:"sale_date"`

	// Joined fields populated on history reads.
	ProductName  string `json:"product_name,omitempty" db:"product_name"`
	CategoryName string `json:"category_name,omitempty" db:"category_name"`
}

// SaleRecord is one row of the filtered dataset the dashboard aggregates:
// a sale joined to its product so category and brand filters can apply.
type SaleRecord struct {
	Date       string
	Quantity   int64
	TotalPrice float64
	ProductID  int64
	ProductName string
	Brand      string
	CategoryID int64
}

// SaleFilter is the shared filter applied uniformly to every dashboard
// aggregation. Nil fields mean no constraint; the date range is inclusive.
type SaleFilter struct {
	StartDate  *string
	EndDate    *string
	CategoryID *int64
	Brand      *string
}
