package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"odyssee/internal/domain"
	"odyssee/internal/repos"
	"odyssee/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE markets(
	  id TEXT PRIMARY KEY, name TEXT NOT NULL, location TEXT NOT NULL DEFAULT '',
	  start_date TEXT NOT NULL, end_date TEXT NOT NULL,
	  status TEXT NOT NULL DEFAULT 'upcoming', notes TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE market_sales(
	  id TEXT PRIMARY KEY,
	  market_id TEXT NOT NULL REFERENCES markets(id) ON DELETE CASCADE,
	  sold_at TEXT DEFAULT CURRENT_TIMESTAMP,
	  total NUMERIC NOT NULL CHECK (total > 0),
	  status TEXT NOT NULL CHECK (status IN ('declared','undeclared'))
	);
	CREATE TABLE sale_lines(
	  id TEXT PRIMARY KEY,
	  sale_id TEXT NOT NULL REFERENCES market_sales(id) ON DELETE CASCADE,
	  stock_id TEXT NOT NULL DEFAULT '',
	  product_name TEXT NOT NULL,
	  quantity INTEGER NOT NULL CHECK (quantity >= 1),
	  unit_price NUMERIC NOT NULL DEFAULT 0,
	  amount NUMERIC NOT NULL CHECK (amount >= 0)
	);
	CREATE TABLE stock_items(
	  id TEXT PRIMARY KEY, name TEXT NOT NULL,
	  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	  unit TEXT NOT NULL DEFAULT 'piece', fridge TEXT NOT NULL DEFAULT '',
	  unit_price NUMERIC NOT NULL DEFAULT 0, notes TEXT NOT NULL DEFAULT '',
	  updated_at TEXT NOT NULL DEFAULT ''
	);

	INSERT INTO markets(id,name,location,start_date,end_date,status)
	  VALUES ('mkt-1','Marché de Noël','Place du Village','2025-12-20','2025-12-24','ongoing');
	INSERT INTO stock_items(id,name,quantity,unit_price) VALUES
	  ('stk-cannele','Cannelé',10,2.50),
	  ('stk-flan','Flan pâtissier',3,3.00);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func saleSvc(db *sqlx.DB) *services.SaleService {
	return services.NewSaleService(repos.NewSaleRepo(db), repos.NewStockRepo(db), repos.NewMarketRepo(db))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSaleService_RecordSale(t *testing.T) {
	db := memdb(t)
	svc := saleSvc(db)

	sale, err := svc.RecordSale("mkt-1", dec("10.00"), []services.Selection{
		{StockID: "stk-cannele", Name: "Cannelé", Quantity: 3},
		{StockID: "stk-flan", Name: "Flan pâtissier", Quantity: 1},
	}, domain.SaleDeclared)
	if err != nil {
		t.Fatal(err)
	}
	if len(sale.Lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(sale.Lines))
	}

	// 10.00 split 3:1: 7.50 + 2.50, reconciling to the total.
	if got := sale.Lines[0].Amount.StringFixed(2); got != "7.50" {
		t.Fatalf("line 0 amount: want 7.50, got %s", got)
	}
	if got := sale.Lines[1].Amount.StringFixed(2); got != "2.50" {
		t.Fatalf("line 1 amount: want 2.50, got %s", got)
	}
	sum := sale.Lines[0].Amount.Add(sale.Lines[1].Amount)
	if !sum.Equal(sale.Total) {
		t.Fatalf("lines sum %s != total %s", sum, sale.Total)
	}

	// unit price snapshotted from stock at record time
	if got := sale.Lines[0].UnitPrice.StringFixed(2); got != "2.50" {
		t.Fatalf("line 0 unit price: want 2.50, got %s", got)
	}

	// stock decremented: 10-3=7 cannelés, 3-1=2 flans
	stock := repos.NewStockRepo(db)
	if it, _ := stock.Get("stk-cannele"); it.Quantity != 7 {
		t.Fatalf("cannelé stock: want 7, got %d", it.Quantity)
	}
	if it, _ := stock.Get("stk-flan"); it.Quantity != 2 {
		t.Fatalf("flan stock: want 2, got %d", it.Quantity)
	}
}

func TestSaleService_RecordSale_RejectsBadInput(t *testing.T) {
	db := memdb(t)
	svc := saleSvc(db)
	sel := []services.Selection{{StockID: "stk-cannele", Name: "Cannelé", Quantity: 1}}

	if _, err := svc.RecordSale("mkt-1", decimal.Zero, sel, domain.SaleDeclared); !errors.Is(err, services.ErrInvalidAmount) {
		t.Fatalf("zero total: want ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.RecordSale("mkt-1", dec("-5"), sel, domain.SaleDeclared); !errors.Is(err, services.ErrInvalidAmount) {
		t.Fatalf("negative total: want ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.RecordSale("mkt-1", dec("5"), nil, domain.SaleDeclared); !errors.Is(err, services.ErrEmptySelection) {
		t.Fatalf("no selection: want ErrEmptySelection, got %v", err)
	}
	if _, err := svc.RecordSale("mkt-absent", dec("5"), sel, domain.SaleDeclared); err == nil {
		t.Fatal("unknown market: want error")
	}

	// nothing was written
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM market_sales`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("want 0 sales, got %d", n)
	}
}

func TestSaleService_RecordSale_StockFloorsAtZero(t *testing.T) {
	db := memdb(t)
	svc := saleSvc(db)

	// sell 5 flans with only 3 in stock: the sale records in full,
	// stock stops at zero instead of going negative
	sale, err := svc.RecordSale("mkt-1", dec("15.00"), []services.Selection{
		{StockID: "stk-flan", Name: "Flan pâtissier", Quantity: 5},
	}, domain.SaleDeclared)
	if err != nil {
		t.Fatal(err)
	}
	if sale.Lines[0].Quantity != 5 {
		t.Fatalf("sold quantity: want 5, got %d", sale.Lines[0].Quantity)
	}
	it, err := repos.NewStockRepo(db).Get("stk-flan")
	if err != nil {
		t.Fatal(err)
	}
	if it.Quantity != 0 {
		t.Fatalf("flan stock: want 0, got %d", it.Quantity)
	}
}

func TestSaleService_RecordSale_UnknownStockStillSells(t *testing.T) {
	db := memdb(t)
	svc := saleSvc(db)

	// off-list product and a stale stock reference: the sale must not fail
	sale, err := svc.RecordSale("mkt-1", dec("8.00"), []services.Selection{
		{Name: "Part de tarte spéciale", Quantity: 1},
		{StockID: "stk-gone", Name: "Ancien produit", Quantity: 1},
	}, domain.SaleUndeclared)
	if err != nil {
		t.Fatal(err)
	}
	if sale.Status != domain.SaleUndeclared {
		t.Fatalf("want undeclared, got %s", sale.Status)
	}
	if sale.Lines[0].StockID != "" {
		t.Fatalf("off-list line should carry no stock id, got %q", sale.Lines[0].StockID)
	}
	sum := sale.Lines[0].Amount.Add(sale.Lines[1].Amount)
	if !sum.Equal(dec("8.00")) {
		t.Fatalf("lines sum %s != 8.00", sum)
	}
}

func TestSaleService_RecordSale_DefaultsToDeclared(t *testing.T) {
	db := memdb(t)
	svc := saleSvc(db)

	sale, err := svc.RecordSale("mkt-1", dec("2.50"), []services.Selection{
		{StockID: "stk-cannele", Name: "Cannelé", Quantity: 1},
	}, "whatever")
	if err != nil {
		t.Fatal(err)
	}
	if sale.Status != domain.SaleDeclared {
		t.Fatalf("want declared, got %s", sale.Status)
	}
}
