package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sergioimports/backend/internal/cache"
	"sergioimports/backend/internal/domain"
)

const (
	topStockLimit    = 5
	recentSalesLimit = 5
)

// Inputs is the record snapshot a summary is computed from.
type Inputs struct {
	Products []domain.Product
	Clients  []domain.Client
	Sales    []domain.Sale
}

// Loader reads the current inputs from storage. It only runs on a cache miss.
type Loader func(ctx context.Context) (Inputs, error)

type Engine struct {
	cache    cache.DashboardCache
	cacheTTL time.Duration
}

func NewEngine(cacheStore cache.DashboardCache, cacheTTL time.Duration) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopDashboardCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &Engine{
		cache:    cacheStore,
		cacheTTL: cacheTTL,
	}
}

// Summary returns the cached summary or builds and caches a fresh one.
// Cache failures never fail the request.
func (e *Engine) Summary(ctx context.Context, now time.Time, load Loader) (domain.DashboardSummary, error) {
	if cached, ok, err := e.cache.Get(ctx, cache.DashboardSummaryKey); err == nil && ok {
		return *cached, nil
	}

	inputs, err := load(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	summary := Build(inputs, now)
	_ = e.cache.Set(ctx, cache.DashboardSummaryKey, &summary, e.cacheTTL)
	return summary, nil
}

// Invalidate drops the cached summary after a write that changes its inputs.
func (e *Engine) Invalidate(ctx context.Context) error {
	return e.cache.Delete(ctx, cache.DashboardSummaryKey)
}

// Build computes the summary. "Today" is the calendar day of now in now's location.
func Build(inputs Inputs, now time.Time) domain.DashboardSummary {
	summary := domain.DashboardSummary{
		TotalProducts: len(inputs.Products),
		TotalClients:  len(inputs.Clients),
		TotalSales:    len(inputs.Sales),
		TotalRevenue:  decimal.Zero,
		TopStock:      []domain.Product{},
		RecentSales:   []domain.Sale{},
		GeneratedAt:   now.UTC(),
	}

	for _, sale := range inputs.Sales {
		summary.TotalRevenue = summary.TotalRevenue.Add(sale.Total)
		if sameDay(sale.Date, now) {
			summary.SalesToday++
		}
	}
	for _, product := range inputs.Products {
		if product.LowStock() {
			summary.LowStockProducts++
		}
	}

	products := append([]domain.Product(nil), inputs.Products...)
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Stock == products[j].Stock {
			return products[i].ID < products[j].ID
		}
		return products[i].Stock > products[j].Stock
	})
	summary.TopStock = append(summary.TopStock, products[:min(topStockLimit, len(products))]...)

	sales := append([]domain.Sale(nil), inputs.Sales...)
	sort.SliceStable(sales, func(i, j int) bool {
		if sales[i].Date.Equal(sales[j].Date) {
			return sales[i].ID > sales[j].ID
		}
		return sales[i].Date.After(sales[j].Date)
	})
	summary.RecentSales = append(summary.RecentSales, sales[:min(recentSalesLimit, len(sales))]...)

	return summary
}

func sameDay(at time.Time, now time.Time) bool {
	y1, m1, d1 := at.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
