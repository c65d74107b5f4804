package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	applog "odyssee/internal/log"
	"odyssee/internal/repos"
	"odyssee/internal/services"
)

type AdminHandler struct {
	Orders    *repos.OrderRepo
	Clients   *repos.ClientRepo
	Markets   *repos.MarketRepo
	Birthdays *services.BirthdayService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	pending, _ := h.Orders.CountByStatus("pending")
	preparing, _ := h.Orders.CountByStatus("preparing")
	clients, err := h.Clients.List("")
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger le tableau de bord"})
	}
	markets, _ := h.Markets.List("")
	birthdays, _ := h.Birthdays.Upcoming(time.Now(), 30)

	return render(c, "dashboard", fiber.Map{
		"PendingOrders":   pending,
		"PreparingOrders": preparing,
		"ClientCount":     len(clients),
		"Markets":         markets,
		"BirthdayCount":   len(birthdays),
	})
}

// GET /admin/birthdays
func (h *AdminHandler) Birthday(c *fiber.Ctx) error {
	list, err := h.Birthdays.Upcoming(time.Now(), 30)
	if err != nil {
		applog.Error(c, "admin.birthdays.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger les anniversaires"})
	}
	return render(c, "birthdays", fiber.Map{"Birthdays": list})
}
