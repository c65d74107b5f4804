package domain

import "github.com/shopspring/decimal"

// Market statuses are operator driven; nothing recomputes them.
const (
	MarketUpcoming  = "upcoming"
	MarketOngoing   = "ongoing"
	MarketFinished  = "finished"
	MarketCancelled = "cancelled"
)

const (
	SaleDeclared   = "declared"
	SaleUndeclared = "undeclared"
)

// Order lifecycle, in display order.
var OrderStatuses = []string{"pending", "confirmed", "preparing", "ready", "delivered", "cancelled"}

var PaymentStatuses = []string{"pending", "partial", "paid", "refunded"}

type Client struct {
	ID         string `db:"id"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Email      string `db:"email"`
	Phone      string `db:"phone"`
	BirthDate  string `db:"birth_date"` // YYYY-MM-DD, may be empty
	Address    string `db:"address"`
	PostalCode string `db:"postal_code"`
	City       string `db:"city"`
	Allergies  string `db:"allergies"`
	Newsletter bool   `db:"newsletter"`
	VIP        bool   `db:"vip"`
	Active     bool   `db:"active"`
	Notes      string `db:"notes"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

type Child struct {
	ID        string `db:"id"`
	ClientID  string `db:"client_id"`
	FirstName string `db:"first_name"`
	BirthDate string `db:"birth_date"` // YYYY-MM-DD, may be empty
	Allergies string `db:"allergies"`
	Notes     string `db:"notes"`
}

type Order struct {
	ID            string          `db:"id"`
	ClientID      string          `db:"client_id"`
	OrderedAt     string          `db:"ordered_at"`
	DeliveryDate  string          `db:"delivery_date"`
	Status        string          `db:"status"`
	Total         decimal.Decimal `db:"total"`
	Kind          string          `db:"kind"` // standard | birthday | event
	EventType     string          `db:"event_type"`
	GuestCount    int             `db:"guest_count"`
	PaymentStatus string          `db:"payment_status"`
	Deposit       decimal.Decimal `db:"deposit"`
	Instructions  string          `db:"instructions"`
}

type OrderItem struct {
	ID          string          `db:"id"`
	OrderID     string          `db:"order_id"`
	ProductName string          `db:"product_name"`
	Description string          `db:"description"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Allergens   string          `db:"allergens"`
}

type StockItem struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Quantity  int             `db:"quantity"`
	Unit      string          `db:"unit"` // piece | part | kg
	Fridge    string          `db:"fridge"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Notes     string          `db:"notes"`
	UpdatedAt string          `db:"updated_at"`
}

type Market struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Location  string `db:"location"`
	StartDate string `db:"start_date"` // YYYY-MM-DD
	EndDate   string `db:"end_date"`   // YYYY-MM-DD
	Status    string `db:"status"`
	Notes     string `db:"notes"`
}

// MarketSale is immutable once recorded; lines carry the allocated amounts.
type MarketSale struct {
	ID       string          `db:"id"`
	MarketID string          `db:"market_id"`
	SoldAt   string          `db:"sold_at"`
	Total    decimal.Decimal `db:"total"`
	Status   string          `db:"status"` // declared | undeclared
	Lines    []SaleLine      `db:"-"`
}

// SaleLine amounts are produced by the allocator, not quantity*unit_price:
// across one sale they always sum back to the declared total.
type SaleLine struct {
	ID          string          `db:"id"`
	SaleID      string          `db:"sale_id"`
	StockID     string          `db:"stock_id"` // empty when no stock reference
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Amount      decimal.Decimal `db:"amount"`
}

// ProductStat is derived per market, never persisted.
type ProductStat struct {
	ProductID     string
	Name          string
	TotalQuantity int
	TotalAmount   decimal.Decimal
	PercentOfRev  decimal.Decimal
}

type MarketStats struct {
	TotalRevenue      decimal.Decimal
	DeclaredRevenue   decimal.Decimal
	UndeclaredRevenue decimal.Decimal
	AveragePerDay     decimal.Decimal
	DurationDays      int
	Products          []ProductStat
	BestSeller        *ProductStat
}

// Back-office accounts. STAFF runs the day-to-day (clients, orders, TPE);
// ADMIN additionally deletes stock items.
const (
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"`
}
