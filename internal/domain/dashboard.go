package domain

// ChartPoint is one month of the dashboard revenue series.
type ChartPoint struct {
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
	Quantity int64   `json:"quantity"`
}

// Metrics holds the dashboard headline numbers. TotalProfit is a fixed
// 30% margin heuristic over revenue, not derived from cost data.
type Metrics struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalSales   int64   `json:"total_sales"`
	TotalProfit  float64 `json:"total_profit"`
}

// TopProduct is one entry of the top-5 products by revenue.
type TopProduct struct {
	Name       string  `json:"name"`
	Quantity   int64   `json:"quantity"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// BrandShare is the revenue attributed to one brand.
type BrandShare struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DashboardData is the combined dashboard response payload.
type DashboardData struct {
	ChartData    []ChartPoint `json:"chart_data"`
	Metrics      Metrics      `json:"metrics"`
	TopProducts  []TopProduct `json:"top_products"`
	SalesByBrand []BrandShare `json:"sales_by_brand"`
}

// ImportResult reports the outcome of a bulk product import: how many rows
// were applied and the messages for rows that were skipped.
type ImportResult struct {
	SuccessCount int      `json:"success_count"`
	Errors       []string `json:"errors"`
}
