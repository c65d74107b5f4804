package repos

import (
	"github.com/jmoiron/sqlx"

	"odyssee/internal/domain"
)

type ClientRepo struct{ db *sqlx.DB }

func NewClientRepo(db *sqlx.DB) *ClientRepo { return &ClientRepo{db: db} }

// List returns active clients sorted by last name; q filters on name or email.
func (r *ClientRepo) List(q string) ([]domain.Client, error) {
	var out []domain.Client
	if q != "" {
		like := "%" + q + "%"
		err := r.db.Select(&out, `
			SELECT * FROM clients
			WHERE active = 1
			  AND (LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?))
			ORDER BY LOWER(last_name), LOWER(first_name)`, like, like, like)
		return out, err
	}
	err := r.db.Select(&out, `
		SELECT * FROM clients WHERE active = 1
		ORDER BY LOWER(last_name), LOWER(first_name)`)
	return out, err
}

func (r *ClientRepo) Get(id string) (domain.Client, error) {
	var c domain.Client
	err := r.db.Get(&c, `SELECT * FROM clients WHERE id = ?`, id)
	return c, err
}

func (r *ClientRepo) Create(c domain.Client) error {
	_, err := r.db.Exec(`
		INSERT INTO clients(id,first_name,last_name,email,phone,birth_date,address,postal_code,city,
		  allergies,newsletter,vip,active,notes,updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,1,?,CURRENT_TIMESTAMP)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.BirthDate, c.Address, c.PostalCode, c.City,
		c.Allergies, c.Newsletter, c.VIP, c.Notes)
	return err
}

func (r *ClientRepo) Update(c domain.Client) error {
	_, err := r.db.Exec(`
		UPDATE clients SET
		  first_name=?, last_name=?, email=?, phone=?, birth_date=?, address=?, postal_code=?, city=?,
		  allergies=?, newsletter=?, vip=?, notes=?, updated_at=CURRENT_TIMESTAMP
		WHERE id=?`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.BirthDate, c.Address, c.PostalCode, c.City,
		c.Allergies, c.Newsletter, c.VIP, c.Notes, c.ID)
	return err
}

// Deactivate keeps the row for order history instead of deleting it.
func (r *ClientRepo) Deactivate(id string) error {
	_, err := r.db.Exec(`UPDATE clients SET active=0, updated_at=CURRENT_TIMESTAMP WHERE id=?`, id)
	return err
}

func (r *ClientRepo) Children(clientID string) ([]domain.Child, error) {
	var out []domain.Child
	err := r.db.Select(&out, `
		SELECT id,client_id,first_name,birth_date,allergies,notes
		FROM children WHERE client_id = ? ORDER BY first_name`, clientID)
	return out, err
}

func (r *ClientRepo) AddChild(ch domain.Child) error {
	_, err := r.db.Exec(`
		INSERT INTO children(id,client_id,first_name,birth_date,allergies,notes)
		VALUES(?,?,?,?,?,?)`,
		ch.ID, ch.ClientID, ch.FirstName, ch.BirthDate, ch.Allergies, ch.Notes)
	return err
}

func (r *ClientRepo) DeleteChild(id string) error {
	_, err := r.db.Exec(`DELETE FROM children WHERE id = ?`, id)
	return err
}

// AllWithBirthDate feeds the birthday page; includes children via a second
// query on the service side.
func (r *ClientRepo) AllWithBirthDate() ([]domain.Client, error) {
	var out []domain.Client
	err := r.db.Select(&out, `
		SELECT * FROM clients WHERE active = 1 AND birth_date != ''`)
	return out, err
}

func (r *ClientRepo) AllChildrenWithBirthDate() ([]domain.Child, error) {
	var out []domain.Child
	err := r.db.Select(&out, `
		SELECT c.id,c.client_id,c.first_name,c.birth_date,c.allergies,c.notes
		FROM children c
		JOIN clients p ON p.id = c.client_id AND p.active = 1
		WHERE c.birth_date != ''`)
	return out, err
}
