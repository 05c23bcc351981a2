package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"smartmart/internal/domain"
	"smartmart/internal/repository"
)

const (
	// TopProductLimit caps the top-products ranking.
	TopProductLimit = 5

	// ProfitMargin is the fixed margin heuristic applied to revenue.
	// Profit is not derived from cost data; this is a deliberate
	// simplification carried over from the business rules.
	ProfitMargin = 0.30
)

// DashboardService builds the aggregated analytics payload for the
// dashboard client.
type DashboardService interface {
	BuildDashboard(ctx context.Context, filter domain.SaleFilter) (*domain.DashboardData, error)
}

type dashboardService struct {
	saleRepo repository.SaleRepository
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(saleRepo repository.SaleRepository) DashboardService {
	return &dashboardService{saleRepo: saleRepo}
}

// BuildDashboard fetches the filtered dataset once and derives the three
// groupings (month, product, brand) plus the headline metrics from it, so
// every view reflects exactly the same rows.
func (s *dashboardService) BuildDashboard(ctx context.Context, filter domain.SaleFilter) (*domain.DashboardData, error) {
	records, err := s.saleRepo.ListRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale records: %w", err)
	}

	data := &domain.DashboardData{
		ChartData:    s.monthlySeries(records),
		TopProducts:  []domain.TopProduct{},
		SalesByBrand: []domain.BrandShare{},
	}

	var totalRevenue float64
	var totalSales int64
	for _, point := range data.ChartData {
		totalRevenue += point.Revenue
		totalSales += point.Quantity
	}

	data.Metrics = domain.Metrics{
		TotalRevenue: round2(totalRevenue),
		TotalSales:   totalSales,
		TotalProfit:  round2(totalRevenue * ProfitMargin),
	}
	data.TopProducts = s.topProducts(records, totalRevenue)
	data.SalesByBrand = s.brandShare(records)

	return data, nil
}

// monthlySeries groups sales by calendar year-month, ascending.
func (s *dashboardService) monthlySeries(records []*domain.SaleRecord) []domain.ChartPoint {
	type monthTotals struct {
		revenue  float64
		quantity int64
	}

	byMonth := map[string]*monthTotals{}
	for _, rec := range records {
		month := monthOf(rec.Date)
		totals, ok := byMonth[month]
		if !ok {
			totals = &monthTotals{}
			byMonth[month] = totals
		}
		totals.revenue += rec.TotalPrice
		totals.quantity += rec.Quantity
	}

	series := make([]domain.ChartPoint, 0, len(byMonth))
	for month, totals := range byMonth {
		series = append(series, domain.ChartPoint{
			Name:     month,
			Revenue:  round2(totals.revenue),
			Quantity: totals.quantity,
		})
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Name < series[j].Name })

	return series
}

// topProducts ranks products by summed revenue, keeping the top five with
// their share of total revenue.
func (s *dashboardService) topProducts(records []*domain.SaleRecord, totalRevenue float64) []domain.TopProduct {
	type productTotals struct {
		name     string
		quantity int64
		total    float64
	}

	byProduct := map[int64]*productTotals{}
	for _, rec := range records {
		totals, ok := byProduct[rec.ProductID]
		if !ok {
			totals = &productTotals{name: rec.ProductName}
			byProduct[rec.ProductID] = totals
		}
		totals.quantity += rec.Quantity
		totals.total += rec.TotalPrice
	}

	ranked := make([]*productTotals, 0, len(byProduct))
	for _, totals := range byProduct {
		ranked = append(ranked, totals)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total != ranked[j].total {
			return ranked[i].total > ranked[j].total
		}
		return ranked[i].name < ranked[j].name
	})

	if len(ranked) > TopProductLimit {
		ranked = ranked[:TopProductLimit]
	}

	top := make([]domain.TopProduct, 0, len(ranked))
	for _, totals := range ranked {
		percentage := 0.0
		if totalRevenue > 0 {
			percentage = round1(totals.total / totalRevenue * 100)
		}
		top = append(top, domain.TopProduct{
			Name:       totals.name,
			Quantity:   totals.quantity,
			Total:      round2(totals.total),
			Percentage: percentage,
		})
	}

	return top
}

// brandShare sums revenue per brand, keeping only labeled brands with a
// strictly positive total. Output is sorted by value descending so the
// payload is deterministic.
func (s *dashboardService) brandShare(records []*domain.SaleRecord) []domain.BrandShare {
	byBrand := map[string]float64{}
	for _, rec := range records {
		if rec.Brand == "" {
			continue
		}
		byBrand[rec.Brand] += rec.TotalPrice
	}

	shares := make([]domain.BrandShare, 0, len(byBrand))
	for brand, total := range byBrand {
		if total <= 0 {
			continue
		}
		shares = append(shares, domain.BrandShare{Name: brand, Value: round2(total)})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value != shares[j].Value {
			return shares[i].Value > shares[j].Value
		}
		return shares[i].Name < shares[j].Name
	})

	return shares
}

// monthOf extracts the YYYY-MM label from a YYYY-MM-DD date string.
func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
