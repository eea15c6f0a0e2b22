// Package appstate models the application state handed to the client after
// auth and settings changes: who is signed in and which theme is active.
// State is always built explicitly from the repository, never held in
// package globals.
package appstate

import (
	"context"
	"errors"
	"fmt"

	"dompetku/internal/auth"
	"dompetku/internal/core"
	"dompetku/internal/log"
)

var ErrInvalidTheme = errors.New("invalid theme")

// ValidThemes lists the accepted theme preferences.
var ValidThemes = []string{"light", "dark", "system"}

// State is the client-facing application state.
type State struct {
	Authenticated bool       `json:"authenticated"`
	User          *core.User `json:"user,omitempty"`
	Theme         string     `json:"theme"`
}

// ThemeStore is the slice of the repository the state service needs.
type ThemeStore interface {
	Theme(ctx context.Context, userID string) (string, error)
	SetTheme(ctx context.Context, userID, theme string) error
}

// Service builds state snapshots and applies the auth and theme transitions.
type Service struct {
	auth   *auth.Service
	themes ThemeStore
	logger *log.Logger
}

func NewService(authSvc *auth.Service, themes ThemeStore, logger *log.Logger) *Service {
	return &Service{auth: authSvc, themes: themes, logger: logger}
}

// Anonymous is the state before any login.
func Anonymous() State {
	return State{Authenticated: false, Theme: "system"}
}

// Current builds the state for an authenticated user.
func (s *Service) Current(ctx context.Context, user core.User) (State, error) {
	theme, err := s.themes.Theme(ctx, user.ID)
	if err != nil {
		return State{}, fmt.Errorf("loading theme: %w", err)
	}
	return State{Authenticated: true, User: &user, Theme: theme}, nil
}

// Register creates the account and returns the resulting state with its
// session token.
func (s *Service) Register(ctx context.Context, name, pin string) (State, string, error) {
	sess, err := s.auth.Register(ctx, name, pin)
	if err != nil {
		return State{}, "", err
	}
	state, err := s.Current(ctx, sess.User)
	if err != nil {
		return State{}, "", err
	}
	return state, sess.Token, nil
}

// Login authenticates and returns the resulting state with its session token.
func (s *Service) Login(ctx context.Context, name, pin string) (State, string, error) {
	sess, err := s.auth.Login(ctx, name, pin)
	if err != nil {
		return State{}, "", err
	}
	state, err := s.Current(ctx, sess.User)
	if err != nil {
		return State{}, "", err
	}
	return state, sess.Token, nil
}

// Logout returns the anonymous state. Tokens are stateless, so the server
// keeps nothing to revoke; the client drops its copy.
func (s *Service) Logout(ctx context.Context, user core.User) State {
	s.logger.InfoContext(ctx, "user logged out", log.FieldUserID, user.ID)
	return Anonymous()
}

// SetTheme stores a new theme preference and returns the updated state.
func (s *Service) SetTheme(ctx context.Context, user core.User, theme string) (State, error) {
	if !validTheme(theme) {
		return State{}, fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	if err := s.themes.SetTheme(ctx, user.ID, theme); err != nil {
		return State{}, fmt.Errorf("storing theme: %w", err)
	}
	return State{Authenticated: true, User: &user, Theme: theme}, nil
}

func validTheme(theme string) bool {
	for _, t := range ValidThemes {
		if theme == t {
			return true
		}
	}
	return false
}
