package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"odyssee/internal/domain"
	applog "odyssee/internal/log"
	"odyssee/internal/repos"
	"odyssee/internal/services"
	"odyssee/internal/validate"
)

var marketStatuses = []string{
	domain.MarketUpcoming, domain.MarketOngoing, domain.MarketFinished, domain.MarketCancelled,
}

type MarketHandler struct {
	Markets *repos.MarketRepo
	Stats   *services.StatsService
}

// GET /admin/markets
func (h *MarketHandler) List(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" {
		if _, ok := validate.OneOf(status, marketStatuses); !ok {
			status = ""
		}
	}
	markets, err := h.Markets.List(status)
	if err != nil {
		applog.Error(c, "markets.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger les marchés"})
	}
	return render(c, "markets", fiber.Map{"Markets": markets, "Status": status, "Statuses": marketStatuses})
}

// POST /admin/markets
func (h *MarketHandler) Create(c *fiber.Ctx) error {
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return c.Status(400).SendString("invalid name")
	}
	location, ok := validate.Name(c.FormValue("location"))
	if !ok {
		return c.Status(400).SendString("invalid location")
	}
	start, ok := validate.Date(c.FormValue("start_date"))
	if !ok {
		return c.Status(400).SendString("invalid start_date")
	}
	// Single-day markets may omit the end date.
	end := c.FormValue("end_date")
	if end == "" {
		end = start
	} else if end, ok = validate.Date(end); !ok {
		return c.Status(400).SendString("invalid end_date")
	}

	m := domain.Market{
		ID:        uuid.NewString(),
		Name:      name,
		Location:  location,
		StartDate: start,
		EndDate:   end,
		Status:    domain.MarketUpcoming,
		Notes:     c.FormValue("notes"),
	}
	if err := h.Markets.Create(m); err != nil {
		applog.Error(c, "markets.create.fail", err, nil)
		return c.Status(400).SendString("could not create market")
	}
	applog.Audit(c, "markets.create", map[string]any{"market_id": m.ID, "name": m.Name})
	return c.Redirect("/admin/markets")
}

// POST /admin/markets/:id/status
func (h *MarketHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status, ok := validate.OneOf(c.FormValue("status"), marketStatuses)
	if id == "" || !ok {
		return c.Status(400).SendString("missing id or status")
	}
	if err := h.Markets.UpdateStatus(id, status); err != nil {
		applog.Error(c, "markets.status.fail", err, map[string]any{"market_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "markets.status", map[string]any{"market_id": id, "status": status})
	return c.Redirect("/admin/markets")
}

// GET /admin/markets/:id/details
func (h *MarketHandler) Details(c *fiber.Ctx) error {
	id := c.Params("id")
	m, err := h.Markets.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Marché introuvable"})
	}
	stats, err := h.Stats.MarketStatistics(id)
	if err != nil {
		applog.Error(c, "markets.stats.fail", err, map[string]any{"market_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de calculer les statistiques"})
	}
	return render(c, "market_details", fiber.Map{"Market": m, "Stats": stats})
}
