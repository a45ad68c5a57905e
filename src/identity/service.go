package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/model"
	"github.com/username/fintrack/backend/src/security"
)

// StateStore hands out one-time values that tie a callback to the sign-in
// that started it.
type StateStore interface {
	Issue() (string, error)
	Consume(state string) bool
}

// SignIn is the outcome of a completed sign-in: the app token the frontend
// presents on later requests and the user it belongs to.
type SignIn struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type Service struct {
	provider   Provider
	states     StateStore
	auth       *security.AuthService
	db         *sql.DB
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(provider Provider, states StateStore, auth *security.AuthService, db *sql.DB, sessionTTL time.Duration) *Service {
	return &Service{
		provider:   provider,
		states:     states,
		auth:       auth,
		db:         db,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Configured reports whether sign-in can succeed at all.
func (s *Service) Configured() bool {
	_, disabled := s.provider.(unconfiguredProvider)
	return !disabled
}

// BeginSignIn returns the provider URL the browser should be sent to.
func (s *Service) BeginSignIn(ctx context.Context) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	state, err := s.states.Issue()
	if err != nil {
		return "", fmt.Errorf("failed to create sign-in state: %w", err)
	}
	return s.provider.BeginSignIn(ctx, state)
}

// CompleteSignIn finishes the redirect flow: it checks state, resolves the
// profile, records the user and opens an app session.
func (s *Service) CompleteSignIn(ctx context.Context, state, code, userAgent, clientIP string) (*SignIn, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if !s.states.Consume(state) {
		return nil, ErrInvalidState
	}

	profile, err := s.provider.CompleteSignIn(ctx, code)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:           profile.Email,
		Name:            profile.Name,
		AuthProvider:    s.provider.Name(),
		ProviderSubject: profile.Subject,
	}
	if err := model.UpsertUser(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("failed to save user %s: %w", profile.Email, err)
	}

	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate app token: %w", err)
	}

	session := &model.Session{
		UserID:        user.ID,
		Token:         token,
		ProviderToken: profile.AccessToken,
		UserAgent:     userAgent,
		ClientIP:      clientIP,
		ExpiresAt:     s.now().Add(s.sessionTTL),
	}
	if err := model.CreateSession(ctx, s.db, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger.FromContext(ctx).Info("User signed in", "userID", user.ID, "provider", user.AuthProvider)
	return &SignIn{
		Token:     token,
		ExpiresAt: s.now().Add(s.auth.TokenExpiry()),
		User:      user,
	}, nil
}

// SignOut ends the app session and revokes the provider token. Failures are
// logged and otherwise ignored.
func (s *Service) SignOut(ctx context.Context, appToken string) {
	log := logger.FromContext(ctx)

	session, err := model.GetSessionByToken(ctx, s.db, appToken)
	switch {
	case err == nil:
		if err := s.provider.SignOut(ctx, session.ProviderToken); err != nil {
			log.Warn("Provider sign-out failed", "userID", session.UserID, "error", err)
		}
	case errors.Is(err, model.ErrSessionNotFound):
		log.Debug("Sign-out for unknown or expired session")
	default:
		log.Warn("Failed to look up session for sign-out", "error", err)
	}

	if err := model.DeleteSessionByToken(ctx, s.db, appToken); err != nil {
		log.Error("Failed to delete session", "error", err)
		return
	}
	log.Info("Session invalidated")
}
