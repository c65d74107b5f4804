package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"odyssee/internal/domain"
	applog "odyssee/internal/log"
	"odyssee/internal/repos"
	"odyssee/internal/validate"
)

type ClientHandler struct {
	Clients *repos.ClientRepo
	Orders  *repos.OrderRepo
}

// GET /admin/clients
func (h *ClientHandler) List(c *fiber.Ctx) error {
	q := c.Query("q")
	clients, err := h.Clients.List(q)
	if err != nil {
		applog.Error(c, "clients.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger les clients"})
	}
	return render(c, "clients", fiber.Map{"Clients": clients, "Query": q})
}

// GET /admin/clients/:id
func (h *ClientHandler) Detail(c *fiber.Ctx) error {
	id := c.Params("id")
	cl, err := h.Clients.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Client introuvable"})
	}
	children, _ := h.Clients.Children(id)
	orders, _ := h.Orders.ListByClient(id)
	return render(c, "client", fiber.Map{"Client": cl, "Children": children, "Orders": orders})
}

func clientFromForm(c *fiber.Ctx) (domain.Client, string) {
	first, ok := validate.Name(c.FormValue("first_name"))
	if !ok {
		return domain.Client{}, "first_name"
	}
	last, ok := validate.Name(c.FormValue("last_name"))
	if !ok {
		return domain.Client{}, "last_name"
	}
	email := c.FormValue("email")
	if email != "" {
		if email, ok = validate.Email(email); !ok {
			return domain.Client{}, "email"
		}
	}
	phone, ok := validate.Phone(c.FormValue("phone"))
	if !ok {
		return domain.Client{}, "phone"
	}
	birth := c.FormValue("birth_date")
	if birth != "" {
		if birth, ok = validate.Date(birth); !ok {
			return domain.Client{}, "birth_date"
		}
	}
	postal := c.FormValue("postal_code")
	if postal != "" {
		if postal, ok = validate.PostalCode(postal); !ok {
			return domain.Client{}, "postal_code"
		}
	}

	return domain.Client{
		FirstName:  first,
		LastName:   last,
		Email:      email,
		Phone:      phone,
		BirthDate:  birth,
		Address:    c.FormValue("address"),
		PostalCode: postal,
		City:       c.FormValue("city"),
		Allergies:  c.FormValue("allergies"),
		Newsletter: c.FormValue("newsletter") == "on",
		VIP:        c.FormValue("vip") == "on",
		Notes:      c.FormValue("notes"),
	}, ""
}

// POST /admin/clients
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	cl, badField := clientFromForm(c)
	if badField != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": badField})
		return c.Status(400).SendString("invalid " + badField)
	}
	cl.ID = uuid.NewString()
	if err := h.Clients.Create(cl); err != nil {
		applog.Error(c, "clients.create.fail", err, nil)
		return c.Status(400).SendString("could not create client")
	}
	applog.Audit(c, "clients.create", map[string]any{"client_id": cl.ID})
	return c.Redirect("/admin/clients/" + cl.ID)
}

// POST /admin/clients/:id
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.Clients.Get(id); err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Client introuvable"})
	}
	cl, badField := clientFromForm(c)
	if badField != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": badField})
		return c.Status(400).SendString("invalid " + badField)
	}
	cl.ID = id
	if err := h.Clients.Update(cl); err != nil {
		applog.Error(c, "clients.update.fail", err, map[string]any{"client_id": id})
		return c.Status(400).SendString("could not update client")
	}
	applog.Audit(c, "clients.update", map[string]any{"client_id": id})
	return c.Redirect("/admin/clients/" + id)
}

// POST /admin/clients/:id/deactivate
func (h *ClientHandler) Deactivate(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Clients.Deactivate(id); err != nil {
		applog.Error(c, "clients.deactivate.fail", err, map[string]any{"client_id": id})
		return c.Status(400).SendString("could not deactivate client")
	}
	applog.Audit(c, "clients.deactivate", map[string]any{"client_id": id})
	return c.Redirect("/admin/clients")
}

// POST /admin/clients/:id/children
func (h *ClientHandler) AddChild(c *fiber.Ctx) error {
	clientID := c.Params("id")
	first, ok := validate.Name(c.FormValue("first_name"))
	if !ok {
		return c.Status(400).SendString("invalid first_name")
	}
	birth := c.FormValue("birth_date")
	if birth != "" {
		if birth, ok = validate.Date(birth); !ok {
			return c.Status(400).SendString("invalid birth_date")
		}
	}
	ch := domain.Child{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		FirstName: first,
		BirthDate: birth,
		Allergies: c.FormValue("allergies"),
		Notes:     c.FormValue("notes"),
	}
	if err := h.Clients.AddChild(ch); err != nil {
		applog.Error(c, "clients.child.add.fail", err, map[string]any{"client_id": clientID})
		return c.Status(400).SendString("could not add child")
	}
	applog.Audit(c, "clients.child.add", map[string]any{"client_id": clientID, "child_id": ch.ID})
	return c.Redirect("/admin/clients/" + clientID)
}

// POST /admin/clients/:id/children/:childID/delete
func (h *ClientHandler) DeleteChild(c *fiber.Ctx) error {
	clientID := c.Params("id")
	if err := h.Clients.DeleteChild(c.Params("childID")); err != nil {
		applog.Error(c, "clients.child.delete.fail", err, nil)
		return c.Status(400).SendString("could not delete child")
	}
	return c.Redirect("/admin/clients/" + clientID)
}
