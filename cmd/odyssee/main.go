package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"odyssee/internal/config"
	"odyssee/internal/http/handlers"
	applog "odyssee/internal/log"
	"odyssee/internal/repos"
	"odyssee/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and show a friendly message
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Une erreur est survenue. Merci de réessayer.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Une erreur est survenue. Merci de réessayer.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			formTok := c.FormValue("csrf")
			applog.Security(c, "csrf.fail", map[string]any{"form": formTok})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Vérification de sécurité échouée. Merci de rafraîchir la page."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)

	// Public pages
	app.Get("/", deps.SiteHandler.Home)
	app.Get("/about", deps.SiteHandler.About)

	// API
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.StockHandler.Check)

	// Auth routes (login throttled)
	app.Get("/admin/login", authH.LoginForm)
	app.Post("/admin/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Trop de tentatives. Réessayez plus tard."})
		},
	}), authH.Login)
	app.Post("/admin/logout", authH.Logout)

	// Back-office
	admin := app.Group("/admin", handlers.RequireStaff(authSvc))
	admin.Get("/", deps.AdminHandler.Dashboard)
	admin.Get("/birthdays", deps.AdminHandler.Birthday)

	admin.Get("/clients", deps.ClientHandler.List)
	admin.Post("/clients", deps.ClientHandler.Create)
	admin.Get("/clients/:id", deps.ClientHandler.Detail)
	admin.Post("/clients/:id", deps.ClientHandler.Update)
	admin.Post("/clients/:id/deactivate", deps.ClientHandler.Deactivate)
	admin.Post("/clients/:id/children", deps.ClientHandler.AddChild)
	admin.Post("/clients/:id/children/:childID/delete", deps.ClientHandler.DeleteChild)

	admin.Get("/orders", deps.OrderHandler.List)
	admin.Get("/orders/new", deps.OrderHandler.NewForm)
	admin.Post("/orders", deps.OrderHandler.Create)
	admin.Get("/orders/:id", deps.OrderHandler.Detail)
	admin.Post("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	admin.Post("/orders/:id/payment", deps.OrderHandler.UpdatePayment)
	admin.Post("/orders/:id/items", deps.OrderHandler.AddItem)
	admin.Post("/orders/:id/items/:itemId/delete", deps.OrderHandler.RemoveItem)

	admin.Get("/stock", deps.StockHandler.List)
	admin.Post("/stock", deps.StockHandler.Create)
	admin.Post("/stock/:id/quantity", deps.StockHandler.SetQuantity)
	admin.Post("/stock/:id/delete", handlers.RequireAdmin(authSvc), deps.StockHandler.Delete)

	admin.Get("/markets", deps.MarketHandler.List)
	admin.Post("/markets", deps.MarketHandler.Create)
	admin.Post("/markets/:id/status", deps.MarketHandler.UpdateStatus)
	admin.Get("/markets/:id/details", deps.MarketHandler.Details)
	admin.Get("/markets/:id/tpe", deps.TPEHandler.Show)
	admin.Post("/markets/:id/tpe/amount", deps.TPEHandler.SubmitAmount)
	admin.Post("/markets/:id/tpe/sales", deps.TPEHandler.RecordSale)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page introuvable"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
