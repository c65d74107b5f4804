package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"odyssee/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Admin list summary ----------
type OrderSummary struct {
	ID            string          `db:"id"`
	ClientID      string          `db:"client_id"`
	ClientName    string          `db:"client_name"`
	OrderedAt     string          `db:"ordered_at"`
	DeliveryDate  string          `db:"delivery_date"`
	Status        string          `db:"status"`
	PaymentStatus string          `db:"payment_status"`
	Total         decimal.Decimal `db:"total"`
}

func (r *OrderRepo) Create(o domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, client_id, ordered_at, delivery_date, status, total, kind, event_type,
	     guest_count, payment_status, deposit, instructions)
	  VALUES (?, ?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.ClientID, o.DeliveryDate, o.Status, o.Total, o.Kind, o.EventType,
		o.GuestCount, o.PaymentStatus, o.Deposit, o.Instructions); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertItem adds a line to an order and recomputes the header total from the
// stored items, in one transaction, so the order never shows a total that
// contradicts its lines.
func (r *OrderRepo) InsertItem(it domain.OrderItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO order_items(id, order_id, product_name, description, quantity, unit_price, allergens)
	  VALUES(?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.OrderID, it.ProductName, it.Description, it.Quantity, it.UnitPrice, it.Allergens); err != nil {
		return err
	}
	if err := recomputeTotal(tx, it.OrderID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *OrderRepo) DeleteItem(orderID, itemID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM order_items WHERE id = ? AND order_id = ?`, itemID, orderID); err != nil {
		return err
	}
	if err := recomputeTotal(tx, orderID); err != nil {
		return err
	}
	return tx.Commit()
}

func recomputeTotal(tx *sqlx.Tx, orderID string) error {
	_, err := tx.Exec(`
		UPDATE orders SET total = (
			SELECT COALESCE(SUM(quantity * unit_price), 0)
			FROM order_items WHERE order_id = ?
		) WHERE id = ?`, orderID, orderID)
	return err
}

func (r *OrderRepo) Get(id string) (domain.Order, []domain.OrderItem, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT * FROM orders WHERE id = ?`, id); err != nil {
		return domain.Order{}, nil, err
	}
	var items []domain.OrderItem
	if err := r.db.Select(&items, `
		SELECT id,order_id,product_name,description,quantity,unit_price,allergens
		FROM order_items WHERE order_id = ? ORDER BY rowid`, id); err != nil {
		return domain.Order{}, nil, err
	}
	return o, items, nil
}

// List returns order summaries with client names, newest first, optionally
// filtered by status.
func (r *OrderRepo) List(status string, limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	base := `
		SELECT o.id, o.client_id, c.first_name || ' ' || c.last_name AS client_name,
		       o.ordered_at, o.delivery_date, o.status, o.payment_status, o.total
		FROM orders o
		JOIN clients c ON c.id = o.client_id`
	var out []OrderSummary
	if status != "" {
		err := r.db.Select(&out, base+`
			WHERE o.status = ?
			ORDER BY datetime(o.ordered_at) DESC LIMIT ?`, status, limit)
		return out, err
	}
	err := r.db.Select(&out, base+`
		ORDER BY datetime(o.ordered_at) DESC LIMIT ?`, limit)
	return out, err
}

func (r *OrderRepo) ListByClient(clientID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT o.id, o.client_id, c.first_name || ' ' || c.last_name AS client_name,
		       o.ordered_at, o.delivery_date, o.status, o.payment_status, o.total
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.client_id = ?
		ORDER BY datetime(o.ordered_at) DESC`, clientID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *OrderRepo) UpdatePaymentStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET payment_status = ? WHERE id = ?`, status, id)
	return err
}

// CountByStatus feeds the dashboard tiles.
func (r *OrderRepo) CountByStatus(status string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders WHERE status = ?`, status)
	return n, err
}
