package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"odyssee/internal/config"
	"odyssee/internal/http/handlers"
	"odyssee/internal/repos"
	"odyssee/internal/services"
)

// Minimal app mirroring the real guard layering: RequireStaff on the
// back-office group, RequireAdmin on stock deletion.
func newGuardApp(t *testing.T) (*fiber.App, *repos.UserRepo) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(limiter.New(limiter.Config{Max: 100, Expiration: 0}))
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, cfg, authSvc)
	admin := app.Group("/admin", handlers.RequireStaff(authSvc))
	admin.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	admin.Post("/stock/:id/delete", handlers.RequireAdmin(authSvc), deps.StockHandler.Delete)

	return app, userRepo
}

func TestStaffGuardOnBackoffice(t *testing.T) {
	app, userRepo := newGuardApp(t)

	// Anonymous -> redirected to login
	resp, err := app.Test(httptest.NewRequest("GET", "/admin/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect to login, got %d", resp.StatusCode)
	}

	// Logged-in staff -> 200
	_ = userRepo.BindSession("sid-marie", "u-marie")
	req := httptest.NewRequest("GET", "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-marie"})
	resp2, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("staff expected 200, got %d", resp2.StatusCode)
	}
}

func TestStockDeleteRequiresAdmin(t *testing.T) {
	app, userRepo := newGuardApp(t)
	_ = userRepo.BindSession("sid-marie", "u-marie")
	_ = userRepo.BindSession("sid-admin", "u-admin")

	// fetch csrf token via the guarded group's redirect target is overkill
	// here; grab one from any GET
	respTok, _ := app.Test(httptest.NewRequest("GET", "/admin/", nil))
	csrfTok := extractCookieAuth(respTok, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}

	mkReq := func(sid string) *http.Request {
		form := strings.NewReader("csrf=" + csrfTok)
		req := httptest.NewRequest("POST", "/admin/stock/stk-cannele/delete", form)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		return req
	}

	// STAFF -> 403
	respStaff, err := app.Test(mkReq("sid-marie"))
	if err != nil {
		t.Fatal(err)
	}
	if respStaff.StatusCode != http.StatusForbidden {
		t.Fatalf("staff delete expected 403, got %d", respStaff.StatusCode)
	}

	// ADMIN -> redirect back to stock page
	respAdmin, err := app.Test(mkReq("sid-admin"))
	if err != nil {
		t.Fatal(err)
	}
	if respAdmin.StatusCode != http.StatusFound {
		t.Fatalf("admin delete expected redirect, got %d", respAdmin.StatusCode)
	}
}
