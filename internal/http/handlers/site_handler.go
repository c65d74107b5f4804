package handlers

import "github.com/gofiber/fiber/v2"

// SiteHandler serves the public marketing pages.
type SiteHandler struct{}

func (h *SiteHandler) Home(c *fiber.Ctx) error {
	return render(c, "home", fiber.Map{})
}

func (h *SiteHandler) About(c *fiber.Ctx) error {
	return render(c, "about", fiber.Map{})
}
