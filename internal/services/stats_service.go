package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"odyssee/internal/domain"
	"odyssee/internal/money"
	"odyssee/internal/repos"
)

// GroupKey picks how sale lines fold into per-product rows. The source data
// mixes stock-backed lines and free-text product names, so the key is
// explicit rather than guessed.
type GroupKey int

const (
	// GroupByStockRef groups on the stock item id, falling back to the
	// product name for off-list lines. Default.
	GroupByStockRef GroupKey = iota
	// GroupByName merges lines purely on product name.
	GroupByName
)

type StatsService struct {
	Sales   *repos.SaleRepo
	Markets *repos.MarketRepo
	GroupBy GroupKey
}

func NewStatsService(sales *repos.SaleRepo, markets *repos.MarketRepo) *StatsService {
	return &StatsService{Sales: sales, Markets: markets}
}

// MarketStatistics aggregates every sale of a market into per-product and
// per-market figures. Pure read over persisted rows; safe to call repeatedly.
// A market with no sales yields zeroed revenue, an empty product list and no
// best seller.
func (s *StatsService) MarketStatistics(marketID string) (domain.MarketStats, error) {
	m, err := s.Markets.Get(marketID)
	if err != nil {
		return domain.MarketStats{}, fmt.Errorf("market %s: %w", marketID, err)
	}
	sales, err := s.Sales.ListForMarket(marketID)
	if err != nil {
		return domain.MarketStats{}, err
	}

	stats := domain.MarketStats{DurationDays: money.DurationDays(m.StartDate, m.EndDate)}

	groups := make(map[string]int)
	for _, sale := range sales {
		stats.TotalRevenue = stats.TotalRevenue.Add(sale.Total)
		if sale.Status == domain.SaleDeclared {
			stats.DeclaredRevenue = stats.DeclaredRevenue.Add(sale.Total)
		} else {
			stats.UndeclaredRevenue = stats.UndeclaredRevenue.Add(sale.Total)
		}

		for _, l := range sale.Lines {
			key := l.ProductName
			if s.GroupBy == GroupByStockRef && l.StockID != "" {
				key = l.StockID
			}
			i, ok := groups[key]
			if !ok {
				i = len(stats.Products)
				groups[key] = i
				stats.Products = append(stats.Products, domain.ProductStat{ProductID: key, Name: l.ProductName})
			}
			stats.Products[i].TotalQuantity += l.Quantity
			stats.Products[i].TotalAmount = stats.Products[i].TotalAmount.Add(l.Amount)
		}
	}

	hundred := decimal.NewFromInt(100)
	for i := range stats.Products {
		if stats.TotalRevenue.IsPositive() {
			stats.Products[i].PercentOfRev = stats.Products[i].TotalAmount.
				Mul(hundred).Div(stats.TotalRevenue).Round(2)
		}
		// Best seller by amount; ties keep the earlier product.
		if stats.BestSeller == nil || stats.Products[i].TotalAmount.GreaterThan(stats.BestSeller.TotalAmount) {
			stats.BestSeller = &stats.Products[i]
		}
	}

	stats.AveragePerDay = stats.TotalRevenue.
		Div(decimal.NewFromInt(int64(stats.DurationDays))).Round(2)

	return stats, nil
}
