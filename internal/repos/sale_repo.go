package repos

import (
	"github.com/jmoiron/sqlx"

	"odyssee/internal/domain"
)

type SaleRepo struct{ db *sqlx.DB }

func NewSaleRepo(db *sqlx.DB) *SaleRepo { return &SaleRepo{db: db} }

// CreateWithLines writes the sale header and all its lines in one
// transaction: no sale without lines, no lines without a sale.
func (r *SaleRepo) CreateWithLines(sale domain.MarketSale) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO market_sales(id,market_id,sold_at,total,status)
		VALUES(?,?,CURRENT_TIMESTAMP,?,?)`,
		sale.ID, sale.MarketID, sale.Total, sale.Status); err != nil {
		return err
	}
	for _, l := range sale.Lines {
		if _, err := tx.Exec(`
			INSERT INTO sale_lines(id,sale_id,stock_id,product_name,quantity,unit_price,amount)
			VALUES(?,?,?,?,?,?,?)`,
			l.ID, sale.ID, l.StockID, l.ProductName, l.Quantity, l.UnitPrice, l.Amount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListForMarket returns a market's sales, newest first, with their lines
// attached in insertion order.
func (r *SaleRepo) ListForMarket(marketID string) ([]domain.MarketSale, error) {
	var sales []domain.MarketSale
	if err := r.db.Select(&sales, `
		SELECT id,market_id,sold_at,total,status
		FROM market_sales
		WHERE market_id = ?
		ORDER BY datetime(sold_at) DESC, id DESC`, marketID); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]string, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}
	query, args, err := sqlx.In(`
		SELECT id,sale_id,stock_id,product_name,quantity,unit_price,amount
		FROM sale_lines
		WHERE sale_id IN (?)
		ORDER BY rowid`, ids)
	if err != nil {
		return nil, err
	}
	var lines []domain.SaleLine
	if err := r.db.Select(&lines, query, args...); err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(sales))
	for i, s := range sales {
		byID[s.ID] = i
	}
	for _, l := range lines {
		i := byID[l.SaleID]
		sales[i].Lines = append(sales[i].Lines, l)
	}
	return sales, nil
}

func (r *SaleRepo) Get(id string) (domain.MarketSale, error) {
	var s domain.MarketSale
	if err := r.db.Get(&s, `
		SELECT id,market_id,sold_at,total,status
		FROM market_sales WHERE id = ?`, id); err != nil {
		return domain.MarketSale{}, err
	}
	if err := r.db.Select(&s.Lines, `
		SELECT id,sale_id,stock_id,product_name,quantity,unit_price,amount
		FROM sale_lines WHERE sale_id = ? ORDER BY rowid`, id); err != nil {
		return domain.MarketSale{}, err
	}
	return s, nil
}
