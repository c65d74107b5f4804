package repos

import (
	"time"

	"odyssee/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,email,name,password_hash,role FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,email,name,password_hash,role FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

// SessionUser resolves a bound session to its user and the time the session
// was last seen; the caller decides whether that is too long ago.
func (r *UserRepo) SessionUser(sid string) (*domain.User, time.Time, error) {
	var row struct {
		domain.User
		LastSeen string `db:"last_seen"`
	}
	err := r.DB.Get(&row, `
      SELECT u.id,u.email,u.name,u.password_hash,u.role,s.last_seen
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, time.Time{}, err
	}
	// CURRENT_TIMESTAMP writes UTC without a zone marker.
	seen, perr := time.Parse("2006-01-02 15:04:05", row.LastSeen)
	if perr != nil {
		seen = time.Now().UTC()
	}
	return &row.User, seen, nil
}

func (r *UserRepo) TouchSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}
