package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"dompetku/internal/core"
	"dompetku/internal/log"
	"dompetku/internal/storage"
)

var (
	ErrWrongPIN     = errors.New("wrong pin")
	ErrUserExists   = storage.ErrUserExists
	ErrUserNotFound = storage.ErrUserNotFound
)

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user core.User) error
	FindUserByName(ctx context.Context, name string) (core.User, error)
	FindUserByID(ctx context.Context, id string) (core.User, error)
}

// Session is returned after a successful register or login.
type Session struct {
	User  core.User
	Token string
}

// Service handles registration and PIN login.
type Service struct {
	users  UserStore
	tokens *TokenManager
	logger *log.Logger
}

func NewService(users UserStore, tokens *TokenManager, logger *log.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger.WithComponent(log.ComponentAuth),
	}
}

// Register creates a user with the given display name and PIN and returns a
// fresh session. Names are unique case-insensitively.
func (s *Service) Register(ctx context.Context, name, pin string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, core.ErrEmptyName
	}
	if err := core.ValidatePIN(pin); err != nil {
		return Session{}, err
	}

	user := core.User{
		ID:        core.NewID(),
		Name:      name,
		PIN:       pin,
		Email:     syntheticEmail(name),
		CreatedAt: time.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return Session{}, ErrUserExists
		}
		return Session{}, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Name)
	if err != nil {
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "user registered", log.FieldUserID, user.ID, log.FieldOperation, log.OpRegister)
	return Session{User: user, Token: token}, nil
}

// Login verifies the PIN for the named user and returns a session.
func (s *Service) Login(ctx context.Context, name, pin string) (Session, error) {
	user, err := s.users.FindUserByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrUserNotFound
		}
		return Session{}, fmt.Errorf("looking up user: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(user.PIN), []byte(pin)) != 1 {
		s.logger.WarnContext(ctx, "login rejected", log.FieldUserID, user.ID, log.FieldOperation, log.OpLogin)
		return Session{}, ErrWrongPIN
	}

	token, err := s.tokens.Generate(user.ID, user.Name)
	if err != nil {
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "user logged in", log.FieldUserID, user.ID, log.FieldOperation, log.OpLogin)
	return Session{User: user, Token: token}, nil
}

// Verify resolves a token back to the stored user.
func (s *Service) Verify(ctx context.Context, token string) (core.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return core.User{}, err
	}
	user, err := s.users.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return core.User{}, ErrInvalidToken
		}
		return core.User{}, err
	}
	return user, nil
}

// syntheticEmail derives the placeholder email stored alongside each
// account. Logins use the display name; the address only fills the profile.
func syntheticEmail(name string) string {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return local + "@dompetku.local"
}
