package services

import (
	"errors"
	"time"

	"odyssee/internal/domain"
	"odyssee/internal/repos"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds       = errors.New("invalid email or password")
	ErrSessionExpired = errors.New("session expired")
)

// A session left idle this long is treated as logged out; the counter
// stays open all day, so the limit is generous.
const defaultIdleLimit = 12 * time.Hour

type AuthService struct {
	Users *repos.UserRepo
	// IdleLimit overrides the default session idle timeout; zero keeps it.
	IdleLimit time.Duration
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

// CurrentUser resolves the session cookie, expiring sessions idle past the
// limit and refreshing last_seen on the ones it lets through.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	u, lastSeen, err := s.Users.SessionUser(sid)
	if err != nil {
		return nil, err
	}
	limit := s.IdleLimit
	if limit <= 0 {
		limit = defaultIdleLimit
	}
	if time.Since(lastSeen) > limit {
		_ = s.Users.UnbindSession(sid)
		return nil, ErrSessionExpired
	}
	_ = s.Users.TouchSession(sid)
	return u, nil
}
