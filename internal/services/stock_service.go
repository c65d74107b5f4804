package services

import (
	"database/sql"

	"odyssee/internal/domain"
	"odyssee/internal/repos"
)

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}

type StockService struct {
	Stock *repos.StockRepo
}

func NewStockService(stock *repos.StockRepo) *StockService {
	return &StockService{Stock: stock}
}

// CheckAvailability converts on-hand quantity to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *StockService) CheckAvailability(stockID string) (Availability, error) {
	it, err := s.Stock.Get(stockID)
	if err != nil {
		if err == sql.ErrNoRows {
			return Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case it.Quantity >= 5:
		status = "IN_STOCK"
	case it.Quantity > 0:
		status = "LOW_STOCK"
	}
	return Availability{Status: status, Qty: it.Quantity}, nil
}

// LowStock lists items at or under the given threshold, for the stock page
// banner.
func (s *StockService) LowStock(threshold int) ([]domain.StockItem, error) {
	items, err := s.Stock.List("")
	if err != nil {
		return nil, err
	}
	var low []domain.StockItem
	for _, it := range items {
		if it.Quantity <= threshold {
			low = append(low, it)
		}
	}
	return low, nil
}
