package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"odyssee/internal/domain"
	applog "odyssee/internal/log"
	"odyssee/internal/repos"
	"odyssee/internal/services"
	"odyssee/internal/validate"
)

// TPEHandler drives the point-of-sale flow on a market: amount entry, then
// product selection, then the recorded sale. The flow step travels in the
// query string so the handler stays stateless.
type TPEHandler struct {
	Markets *repos.MarketRepo
	Stock   *repos.StockRepo
	Sales   *repos.SaleRepo
	Sale    *services.SaleService
}

// GET /admin/markets/:id/tpe
func (h *TPEHandler) Show(c *fiber.Ctx) error {
	id := c.Params("id")
	m, err := h.Markets.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Marché introuvable"})
	}
	recent, err := h.Sales.ListForMarket(id)
	if err != nil {
		applog.Error(c, "tpe.sales.list.fail", err, map[string]any{"market_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger les ventes"})
	}

	step := domain.ParseFlowStep(c.Query("step"))
	data := fiber.Map{"Market": m, "Sales": recent, "Step": step, "Err": c.Query("err")}

	if step == domain.StepProducts {
		amount, ok := validate.Amount(c.Query("amount"))
		if !ok {
			// Back to the keypad rather than selling for nothing.
			return c.Redirect("/admin/markets/" + id + "/tpe?err=montant")
		}
		items, err := h.Stock.List("")
		if err != nil {
			applog.Error(c, "tpe.stock.list.fail", err, nil)
			return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger le stock"})
		}
		data["Amount"] = amount
		data["StockItems"] = items
		return render(c, "tpe_products", data)
	}

	if step == domain.StepDone {
		data["Recorded"] = true
	}
	return render(c, "tpe_amount", data)
}

// POST /admin/markets/:id/tpe/amount
func (h *TPEHandler) SubmitAmount(c *fiber.Ctx) error {
	id := c.Params("id")
	amount, ok := validate.Amount(c.FormValue("amount"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "amount"})
		return c.Redirect("/admin/markets/" + id + "/tpe?err=montant")
	}
	return c.Redirect("/admin/markets/" + id + "/tpe?step=products&amount=" + amount.StringFixed(2))
}

// POST /admin/markets/:id/tpe/sales
// Product quantities arrive as qty_<stockID> fields; an optional free-text
// product as custom_name/custom_qty.
func (h *TPEHandler) RecordSale(c *fiber.Ctx) error {
	id := c.Params("id")

	amount, ok := validate.Amount(c.FormValue("amount"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "amount"})
		return c.Status(400).SendString("Impossible d'enregistrer la vente")
	}

	status := c.FormValue("status")
	if status != domain.SaleDeclared && status != domain.SaleUndeclared {
		return c.Status(400).SendString("invalid status")
	}

	var sels []services.Selection
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if !strings.HasPrefix(k, "qty_") {
			return
		}
		qty, err := strconv.Atoi(strings.TrimSpace(string(value)))
		if err != nil || qty < 1 {
			return
		}
		stockID := strings.TrimPrefix(k, "qty_")
		name := stockID
		if it, err := h.Stock.Get(stockID); err == nil {
			name = it.Name
		}
		sels = append(sels, services.Selection{StockID: stockID, Name: name, Quantity: qty})
	})
	if name, ok := validate.Name(c.FormValue("custom_name")); ok {
		sels = append(sels, services.Selection{
			Name:     name,
			Quantity: validate.Qty(c.FormValue("custom_qty")),
		})
	}

	sale, err := h.Sale.RecordSale(id, amount, sels, status)
	if err != nil {
		switch err {
		case services.ErrInvalidAmount, services.ErrEmptySelection:
			applog.Security(c, "tpe.sale.reject", map[string]any{"market_id": id, "reason": err.Error()})
		default:
			applog.Error(c, "tpe.sale.fail", err, map[string]any{"market_id": id})
		}
		return c.Status(400).SendString("Impossible d'enregistrer la vente")
	}

	applog.Audit(c, "tpe.sale.record", map[string]any{
		"sale_id": sale.ID, "market_id": id, "total": sale.Total.StringFixed(2),
		"status": sale.Status, "lines": len(sale.Lines),
	})
	return c.Redirect("/admin/markets/" + id + "/tpe?step=done")
}
