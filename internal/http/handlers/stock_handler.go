package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"odyssee/internal/domain"
	applog "odyssee/internal/log"
	"odyssee/internal/repos"
	"odyssee/internal/services"
	"odyssee/internal/validate"
)

type StockHandler struct {
	Repo  *repos.StockRepo
	Stock *services.StockService
}

// GET /admin/stock
func (h *StockHandler) List(c *fiber.Ctx) error {
	fridge := c.Query("fridge")
	items, err := h.Repo.List(fridge)
	if err != nil {
		applog.Error(c, "stock.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger le stock"})
	}
	low, _ := h.Stock.LowStock(2)
	return render(c, "stock", fiber.Map{"Items": items, "Fridge": fridge, "Low": low})
}

// POST /admin/stock
func (h *StockHandler) Create(c *fiber.Ctx) error {
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return c.Status(400).SendString("invalid name")
	}
	qty, err := strconv.Atoi(strings.TrimSpace(c.FormValue("quantity")))
	if err != nil || qty < 0 {
		return c.Status(400).SendString("invalid quantity")
	}
	price := decimal.Zero
	if v := c.FormValue("unit_price"); v != "" {
		if p, ok := validate.Amount(v); ok {
			price = p
		} else {
			return c.Status(400).SendString("invalid unit_price")
		}
	}
	unit := c.FormValue("unit")
	if _, ok := validate.OneOf(unit, []string{"piece", "part", "kg"}); !ok {
		unit = "piece"
	}

	it := domain.StockItem{
		ID:        uuid.NewString(),
		Name:      name,
		Quantity:  qty,
		Unit:      unit,
		Fridge:    c.FormValue("fridge"),
		UnitPrice: price,
		Notes:     c.FormValue("notes"),
	}
	if err := h.Repo.Create(it); err != nil {
		applog.Error(c, "stock.create.fail", err, nil)
		return c.Status(400).SendString("could not add stock item")
	}
	applog.Audit(c, "stock.create", map[string]any{"stock_id": it.ID, "name": it.Name})
	return c.Redirect("/admin/stock")
}

// POST /admin/stock/:id/quantity
func (h *StockHandler) SetQuantity(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	qty, err := strconv.Atoi(strings.TrimSpace(c.FormValue("quantity")))
	if !ok || err != nil || qty < 0 {
		return c.Status(400).SendString("invalid input")
	}
	if err := h.Repo.SetQuantity(id, qty); err != nil {
		applog.Error(c, "stock.quantity.fail", err, map[string]any{"stock_id": id})
		return c.Status(400).SendString("could not update quantity")
	}
	applog.Audit(c, "stock.quantity", map[string]any{"stock_id": id, "qty": qty})
	return c.Redirect("/admin/stock")
}

// POST /admin/stock/:id/delete
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Repo.Delete(id); err != nil {
		applog.Error(c, "stock.delete.fail", err, map[string]any{"stock_id": id})
		return c.Status(400).SendString("could not delete stock item")
	}
	applog.Audit(c, "stock.delete", map[string]any{"stock_id": id})
	return c.Redirect("/admin/stock")
}

// GET /api/v1/availability?stockId=...
func (h *StockHandler) Check(c *fiber.Ctx) error {
	stockID := strings.TrimSpace(c.Query("stockId"))
	if _, ok := validate.ID(stockID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing or invalid stockId",
		})
	}
	avail, err := h.Stock.CheckAvailability(stockID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(avail)
}
