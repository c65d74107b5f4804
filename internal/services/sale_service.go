package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"odyssee/internal/domain"
	applog "odyssee/internal/log"
	"odyssee/internal/money"
	"odyssee/internal/repos"
)

// Caller-input errors, surfaced before anything is written.
var (
	ErrInvalidAmount  = money.ErrInvalidAmount
	ErrEmptySelection = money.ErrEmptySelection
)

// Selection is one product chosen at the TPE; StockID is empty for products
// sold off-list.
type Selection struct {
	StockID  string
	Name     string
	Quantity int
}

type SaleService struct {
	Sales   *repos.SaleRepo
	Stock   *repos.StockRepo
	Markets *repos.MarketRepo
}

func NewSaleService(sales *repos.SaleRepo, stock *repos.StockRepo, markets *repos.MarketRepo) *SaleService {
	return &SaleService{Sales: sales, Stock: stock, Markets: markets}
}

// RecordSale writes one sale with its lines, then decrements stock for every
// line that references a stock item. The sale is the document of record:
// once it is committed, a failed stock decrement is logged and skipped, never
// rolled back.
func (s *SaleService) RecordSale(marketID string, total decimal.Decimal, sels []Selection, status string) (domain.MarketSale, error) {
	if !total.IsPositive() {
		return domain.MarketSale{}, ErrInvalidAmount
	}
	if len(sels) == 0 {
		return domain.MarketSale{}, ErrEmptySelection
	}
	if status != domain.SaleUndeclared {
		status = domain.SaleDeclared
	}

	if _, err := s.Markets.Get(marketID); err != nil {
		return domain.MarketSale{}, fmt.Errorf("market %s: %w", marketID, err)
	}

	qtys := make([]int, len(sels))
	for i, sel := range sels {
		qtys[i] = sel.Quantity
	}
	amounts, err := money.Allocate(total, qtys)
	if err != nil {
		return domain.MarketSale{}, err
	}

	sale := domain.MarketSale{
		ID:       uuid.NewString(),
		MarketID: marketID,
		Total:    total.Round(2),
		Status:   status,
		Lines:    make([]domain.SaleLine, len(sels)),
	}
	for i, sel := range sels {
		price := decimal.Zero
		if sel.StockID != "" {
			price = s.Stock.UnitPriceOf(sel.StockID)
		}
		sale.Lines[i] = domain.SaleLine{
			ID:          uuid.NewString(),
			SaleID:      sale.ID,
			StockID:     sel.StockID,
			ProductName: sel.Name,
			Quantity:    sel.Quantity,
			UnitPrice:   price,
			Amount:      amounts[i],
		}
	}

	if err := s.Sales.CreateWithLines(sale); err != nil {
		return domain.MarketSale{}, fmt.Errorf("record sale: %w", err)
	}

	// Best-effort inventory bookkeeping; the sale already happened.
	for _, l := range sale.Lines {
		if l.StockID == "" {
			continue
		}
		if err := s.Stock.DecrementFloor(l.StockID, l.Quantity); err != nil {
			applog.Error(nil, "sale.stock.decrement.fail", err, map[string]any{
				"sale_id": sale.ID, "stock_id": l.StockID, "qty": l.Quantity,
			})
		}
	}

	return s.Sales.Get(sale.ID)
}
