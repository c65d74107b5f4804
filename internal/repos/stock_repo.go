package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"odyssee/internal/domain"
)

type StockRepo struct{ db *sqlx.DB }

func NewStockRepo(db *sqlx.DB) *StockRepo { return &StockRepo{db: db} }

// List returns stock rows, optionally filtered by fridge.
func (r *StockRepo) List(fridge string) ([]domain.StockItem, error) {
	var out []domain.StockItem
	if fridge != "" {
		err := r.db.Select(&out, `
			SELECT id,name,quantity,unit,fridge,unit_price,notes,updated_at
			FROM stock_items WHERE fridge = ? ORDER BY name`, fridge)
		return out, err
	}
	err := r.db.Select(&out, `
		SELECT id,name,quantity,unit,fridge,unit_price,notes,updated_at
		FROM stock_items ORDER BY fridge, name`)
	return out, err
}

func (r *StockRepo) Get(id string) (domain.StockItem, error) {
	var it domain.StockItem
	err := r.db.Get(&it, `
		SELECT id,name,quantity,unit,fridge,unit_price,notes,updated_at
		FROM stock_items WHERE id = ?`, id)
	return it, err
}

func (r *StockRepo) Create(it domain.StockItem) error {
	_, err := r.db.Exec(`
		INSERT INTO stock_items(id,name,quantity,unit,fridge,unit_price,notes,updated_at)
		VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)`,
		it.ID, it.Name, it.Quantity, it.Unit, it.Fridge, it.UnitPrice, it.Notes)
	return err
}

// SetQuantity overwrites the on-hand count (admin stock page).
func (r *StockRepo) SetQuantity(id string, qty int) error {
	_, err := r.db.Exec(`
		UPDATE stock_items SET quantity = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, qty, id)
	return err
}

// DecrementFloor subtracts by units, never dropping below zero. The sale of
// record has already been written when this runs, so an over-sell clamps
// instead of failing.
func (r *StockRepo) DecrementFloor(id string, by int) error {
	_, err := r.db.Exec(`
		UPDATE stock_items
		SET quantity = MAX(0, quantity - ?), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, by, id)
	return err
}

func (r *StockRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM stock_items WHERE id = ?`, id)
	return err
}

// UnitPriceOf returns the current price for a stock item, zero when the item
// does not exist. Used at point of sale to snapshot line prices.
func (r *StockRepo) UnitPriceOf(id string) decimal.Decimal {
	var p decimal.Decimal
	if err := r.db.Get(&p, `SELECT unit_price FROM stock_items WHERE id = ?`, id); err != nil {
		return decimal.Zero
	}
	return p
}
