package handlers

import (
	"odyssee/internal/domain"
	applog "odyssee/internal/log"
	"odyssee/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireStaff gates the back-office: any logged-in account passes.
func RequireStaff(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/admin/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/admin/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAdmin additionally demands the ADMIN role (user management, stock
// deletion).
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/admin/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Accès refusé"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}
