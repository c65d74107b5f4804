package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"odyssee/internal/domain"
	applog "odyssee/internal/log"
	"odyssee/internal/repos"
	"odyssee/internal/services"
	"odyssee/internal/validate"
)

type OrderHandler struct {
	Orders  *services.OrderService
	Repo    *repos.OrderRepo
	Clients *repos.ClientRepo
}

// GET /admin/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" {
		if _, ok := validate.OneOf(status, domain.OrderStatuses); !ok {
			status = ""
		}
	}
	orders, err := h.Repo.List(status, 200)
	if err != nil {
		applog.Error(c, "orders.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger les commandes"})
	}
	return render(c, "orders", fiber.Map{"Orders": orders, "Status": status, "Statuses": domain.OrderStatuses})
}

// GET /admin/orders/new
func (h *OrderHandler) NewForm(c *fiber.Ctx) error {
	clients, err := h.Clients.List("")
	if err != nil {
		applog.Error(c, "orders.form.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger le formulaire"})
	}
	return render(c, "order_form", fiber.Map{"Clients": clients})
}

// POST /admin/orders
// The form posts parallel arrays for line products.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	clientID, ok := validate.ID(c.FormValue("client_id"))
	if !ok {
		return c.Status(400).SendString("invalid client")
	}
	delivery := c.FormValue("delivery_date")
	if delivery != "" {
		if delivery, ok = validate.Date(delivery); !ok {
			return c.Status(400).SendString("invalid delivery_date")
		}
	}
	kind := c.FormValue("kind")
	if _, ok := validate.OneOf(kind, []string{"standard", "birthday", "event"}); !ok {
		kind = "standard"
	}

	deposit := decimal.Zero
	if v := c.FormValue("deposit"); v != "" {
		if d, ok := validate.Amount(v); ok {
			deposit = d
		}
	}

	// The creation form carries the first product; more are added one at a
	// time from the order page, as at the counter.
	name, ok := validate.Name(c.FormValue("item_name"))
	if !ok {
		return c.Status(400).SendString("invalid item_name")
	}
	price := decimal.Zero
	if p, ok := validate.Amount(c.FormValue("item_price")); ok {
		price = p
	}
	items := []services.OrderItemInput{{
		ProductName: name,
		Quantity:    validate.Qty(c.FormValue("item_qty")),
		UnitPrice:   price,
	}}

	orderID, err := h.Orders.Create(clientID, delivery, kind, c.FormValue("event_type"),
		validate.Qty(c.FormValue("guest_count")), deposit, c.FormValue("instructions"), items)
	if err != nil {
		applog.Error(c, "orders.create.fail", err, map[string]any{"client_id": clientID})
		return c.Status(400).SendString("Impossible d'enregistrer la commande")
	}
	applog.Audit(c, "orders.create", map[string]any{"order_id": orderID, "client_id": clientID})
	return c.Redirect("/admin/orders/" + orderID)
}

// GET /admin/orders/:id
func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	id := c.Params("id")
	o, items, err := h.Repo.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Commande introuvable"})
	}
	cl, _ := h.Clients.Get(o.ClientID)
	return render(c, "order", fiber.Map{
		"Order": o, "Items": items, "Client": cl,
		"Statuses": domain.OrderStatuses, "PaymentStatuses": domain.PaymentStatuses,
	})
}

// POST /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status, ok := validate.OneOf(c.FormValue("status"), domain.OrderStatuses)
	if id == "" || !ok {
		return c.Status(400).SendString("missing id or status")
	}
	if err := h.Repo.UpdateStatus(id, status); err != nil {
		applog.Error(c, "orders.status.fail", err, map[string]any{"order_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "orders.status", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders/" + id)
}

// POST /admin/orders/:id/payment
func (h *OrderHandler) UpdatePayment(c *fiber.Ctx) error {
	id := c.Params("id")
	status, ok := validate.OneOf(c.FormValue("payment_status"), domain.PaymentStatuses)
	if id == "" || !ok {
		return c.Status(400).SendString("missing id or payment status")
	}
	if err := h.Repo.UpdatePaymentStatus(id, status); err != nil {
		applog.Error(c, "orders.payment.fail", err, map[string]any{"order_id": id})
		return c.Status(400).SendString("could not update payment status")
	}
	applog.Audit(c, "orders.payment", map[string]any{"order_id": id, "payment_status": status})
	return c.Redirect("/admin/orders/" + id)
}

// POST /admin/orders/:id/items
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	orderID := c.Params("id")
	name, ok := validate.Name(c.FormValue("product_name"))
	if !ok {
		return c.Status(400).SendString("invalid product_name")
	}
	price := decimal.Zero
	if p, ok := validate.Amount(c.FormValue("unit_price")); ok {
		price = p
	}
	it := domain.OrderItem{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		ProductName: name,
		Description: c.FormValue("description"),
		Quantity:    validate.Qty(c.FormValue("quantity")),
		UnitPrice:   price,
		Allergens:   c.FormValue("allergens"),
	}
	if err := h.Repo.InsertItem(it); err != nil {
		applog.Error(c, "orders.item.add.fail", err, map[string]any{"order_id": orderID})
		return c.Status(400).SendString("could not add product")
	}
	applog.Audit(c, "orders.item.add", map[string]any{"order_id": orderID, "item_id": it.ID})
	return c.Redirect("/admin/orders/" + orderID)
}

// POST /admin/orders/:id/items/:itemId/delete
func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	orderID := c.Params("id")
	itemID := c.Params("itemId")
	if orderID == "" || itemID == "" {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Repo.DeleteItem(orderID, itemID); err != nil {
		applog.Error(c, "orders.item.remove.fail", err, map[string]any{"order_id": orderID})
		return c.Status(400).SendString("could not remove product")
	}
	applog.Audit(c, "orders.item.remove", map[string]any{"order_id": orderID, "item_id": itemID})
	return c.Redirect("/admin/orders/" + orderID)
}
