package services

import (
	"errors"
	"strings"

	"warehousebot/internal/domain"
	"warehousebot/internal/repos"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCreds = errors.New("invalid password")

// AuthService gates the bot behind one shared password. The password is kept
// only as a bcrypt hash; actors that pass are remembered in authenticated_actors.
type AuthService struct {
	Actors *repos.ActorRepo
	Clock  Clock
	hash   []byte
}

func NewAuthService(actors *repos.ActorRepo, password string) (*AuthService, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{Actors: actors, hash: h}, nil
}

func (s *AuthService) Authenticated(actorID int64) (bool, error) {
	_, err := s.Actors.ByID(actorID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *AuthService) Login(a domain.Actor, password string) error {
	if bcrypt.CompareHashAndPassword(s.hash, []byte(strings.TrimSpace(password))) != nil {
		return ErrBadCreds
	}
	a.AuthenticatedAt = s.Clock.Stamp()
	return s.Actors.Bind(a)
}

func (s *AuthService) Logout(actorID int64) error {
	return s.Actors.Unbind(actorID)
}
