package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"odyssee/internal/domain"
	"odyssee/internal/repos"
)

var ErrNoOrderItems = errors.New("an order needs at least one product")

type OrderItemInput struct {
	ProductName string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Allergens   string
}

type OrderService struct {
	Orders  *repos.OrderRepo
	Clients *repos.ClientRepo
}

func NewOrderService(orders *repos.OrderRepo, clients *repos.ClientRepo) *OrderService {
	return &OrderService{Orders: orders, Clients: clients}
}

// Create validates the client, totals the items and writes the order header
// plus its items. Unlike market sales, order totals are quantity x price.
func (s *OrderService) Create(clientID, deliveryDate, kind, eventType string, guestCount int,
	deposit decimal.Decimal, instructions string, items []OrderItemInput) (string, error) {

	if _, err := s.Clients.Get(clientID); err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrNoOrderItems
	}

	total := decimal.Zero
	for _, it := range items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	o := domain.Order{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		DeliveryDate:  deliveryDate,
		Status:        "pending",
		Total:         total.Round(2),
		Kind:          kind,
		EventType:     eventType,
		GuestCount:    guestCount,
		PaymentStatus: "pending",
		Deposit:       deposit,
		Instructions:  instructions,
	}
	if err := s.Orders.Create(o); err != nil {
		return "", err
	}
	for _, it := range items {
		item := domain.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductName: it.ProductName,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Allergens:   it.Allergens,
		}
		if err := s.Orders.InsertItem(item); err != nil {
			return "", err
		}
	}
	return o.ID, nil
}
