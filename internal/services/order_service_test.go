package services_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"odyssee/internal/domain"
	"odyssee/internal/repos"
	"odyssee/internal/services"
)

func orderFixture(t *testing.T) (*services.OrderService, *repos.OrderRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.MustExec(`INSERT INTO clients(id,first_name,last_name) VALUES('cl-1','Jeanne','Martin')`)
	orderRepo := repos.NewOrderRepo(db)
	return services.NewOrderService(orderRepo, repos.NewClientRepo(db)), orderRepo
}

func TestOrderService_CreateTotalsItems(t *testing.T) {
	svc, orderRepo := orderFixture(t)

	id, err := svc.Create("cl-1", "", "standard", "", 0, decimal.Zero, "",
		[]services.OrderItemInput{{ProductName: "Cannelé", Quantity: 2, UnitPrice: dec("3.00")}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	o, items, err := orderRepo.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}
	if !o.Total.Equal(dec("6.00")) {
		t.Fatalf("want total 6.00, got %s", o.Total)
	}
}

func TestOrderItems_MutationsKeepTotalInStep(t *testing.T) {
	svc, orderRepo := orderFixture(t)

	id, err := svc.Create("cl-1", "", "standard", "", 0, decimal.Zero, "",
		[]services.OrderItemInput{{ProductName: "Cannelé", Quantity: 2, UnitPrice: dec("3.00")}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// an item added after the fact must show up in the header total
	err = orderRepo.InsertItem(domain.OrderItem{
		ID: "it-flan", OrderID: id, ProductName: "Flan", Quantity: 1, UnitPrice: dec("4.00"),
	})
	if err != nil {
		t.Fatalf("insert item: %v", err)
	}
	o, items, err := orderRepo.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
	if !o.Total.Equal(dec("10.00")) {
		t.Fatalf("want total 10.00 after add, got %s", o.Total)
	}

	if err := orderRepo.DeleteItem(id, "it-flan"); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	o, items, err = orderRepo.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item after removal, got %d", len(items))
	}
	if !o.Total.Equal(dec("6.00")) {
		t.Fatalf("want total back to 6.00, got %s", o.Total)
	}
}
