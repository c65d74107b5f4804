package repos

import (
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"odyssee/internal/domain"
)

type MarketRepo struct{ db *sqlx.DB }

func NewMarketRepo(db *sqlx.DB) *MarketRepo { return &MarketRepo{db: db} }

func (r *MarketRepo) Get(id string) (domain.Market, error) {
	var m domain.Market
	err := r.db.Get(&m, `
		SELECT id,name,location,start_date,end_date,status,notes
		FROM markets WHERE id = ?`, id)
	return m, err
}

// List returns markets ordered by proximity of their start date to today,
// nearest first, optionally filtered by status.
func (r *MarketRepo) List(status string) ([]domain.Market, error) {
	var out []domain.Market
	var err error
	if status != "" {
		err = r.db.Select(&out, `
			SELECT id,name,location,start_date,end_date,status,notes
			FROM markets WHERE status = ?`, status)
	} else {
		err = r.db.Select(&out, `
			SELECT id,name,location,start_date,end_date,status,notes
			FROM markets`)
	}
	if err != nil {
		return nil, err
	}

	today := time.Now()
	dist := func(m domain.Market) time.Duration {
		d, perr := time.Parse("2006-01-02", m.StartDate)
		if perr != nil {
			return 1<<62 - 1
		}
		diff := d.Sub(today)
		if diff < 0 {
			diff = -diff
		}
		return diff
	}
	sort.SliceStable(out, func(i, j int) bool { return dist(out[i]) < dist(out[j]) })
	return out, nil
}

func (r *MarketRepo) Create(m domain.Market) error {
	_, err := r.db.Exec(`
		INSERT INTO markets(id,name,location,start_date,end_date,status,notes)
		VALUES(?,?,?,?,?,?,?)`,
		m.ID, m.Name, m.Location, m.StartDate, m.EndDate, m.Status, m.Notes)
	return err
}

func (r *MarketRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE markets SET status = ? WHERE id = ?`, status, id)
	return err
}
