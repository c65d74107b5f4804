package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"odyssee/internal/config"
	"odyssee/internal/http/handlers"
	"odyssee/internal/repos"
	"odyssee/internal/services"
)

// Minimal app setup for validation tests
func newValidationApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 1 << 20
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
	api := app.Group("/api/v1")
	api.Get("/availability", deps.StockHandler.Check)
	app.Get("/admin/clients", deps.ClientHandler.List)
	app.Post("/admin/clients", deps.ClientHandler.Create)
	app.Post("/admin/markets/:id/tpe/sales", deps.TPEHandler.RecordSale)
	app.Get("/admin/login", authH.LoginForm)

	return app, db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Malformed inputs are rejected before touching the database.
func TestValidationBadInputs(t *testing.T) {
	app, _ := newValidationApp(t)

	// availability with a malformed stock id
	req := httptest.NewRequest("GET", "/api/v1/availability?stockId=%3Cscript%3E", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad stockId expected 400, got %d", resp.StatusCode)
	}

	loginResp, _ := app.Test(httptest.NewRequest("GET", "/admin/login", nil))
	csrfTok := extractCookie(loginResp, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}

	post := func(path, body string) *http.Response {
		req := httptest.NewRequest("POST", path, strings.NewReader("csrf="+csrfTok+"&"+body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	// client with a bad postal code
	respClient := post("/admin/clients", "first_name=Jeanne&last_name=Martin&postal_code=ABCDE")
	if respClient.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad postal code expected 400, got %d", respClient.StatusCode)
	}

	// sale with a non-numeric amount
	respSale := post("/admin/markets/mkt-demo/tpe/sales", "amount=dix&status=declared&qty_stk-cannele=1")
	if respSale.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad amount expected 400, got %d", respSale.StatusCode)
	}

	// sale with a valid amount but nothing selected
	respEmpty := post("/admin/markets/mkt-demo/tpe/sales", "amount=5.00&status=declared")
	if respEmpty.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty selection expected 400, got %d", respEmpty.StatusCode)
	}
}

// Templates auto-escape untrusted text.
func TestTemplateAutoEscape(t *testing.T) {
	app, db := newValidationApp(t)
	_, _ = db.Exec(`
		INSERT INTO clients(id,first_name,last_name)
		VALUES('xss-1','<script>alert(1)</script>','Test')
	`)

	req := httptest.NewRequest("GET", "/admin/clients", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	if strings.Contains(s, "<script>alert(1)</script>") {
		t.Fatalf("found unescaped script tag in output")
	}
	if !strings.Contains(s, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("escaped script not found; output=%s", s)
	}
}
