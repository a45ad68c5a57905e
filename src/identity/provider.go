package identity

import (
	"context"
	"errors"

	"github.com/username/fintrack/backend/src/config"
	"github.com/username/fintrack/backend/src/logger"
)

var (
	ErrNotConfigured    = errors.New("identity provider is not configured")
	ErrInvalidState     = errors.New("invalid or expired sign-in state")
	ErrEmailNotVerified = errors.New("email not verified by identity provider")
)

// NotConfiguredNotice is shown to the user when sign-in is attempted without
// provider credentials.
const NotConfiguredNotice = "Sign-in is not configured. Please add your GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET to the environment variables."

// Profile is what a provider knows about the person who signed in.
type Profile struct {
	Subject     string
	Email       string
	Name        string
	AccessToken string
}

// Provider is a third-party sign-in service. BeginSignIn and CompleteSignIn are
// the two halves of the interactive redirect flow.
type Provider interface {
	Name() string
	BeginSignIn(ctx context.Context, state string) (string, error)
	CompleteSignIn(ctx context.Context, code string) (*Profile, error)
	SignOut(ctx context.Context, accessToken string) error
}

// NewProvider returns the Google provider, or a disabled provider when the
// client credentials are absent.
func NewProvider(cfg *config.AppConfig) Provider {
	if cfg == nil || !cfg.GoogleConfigured() {
		logger.L.Warn("Google sign-in config missing. Auth disabled.")
		return unconfiguredProvider{}
	}
	return NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
}

type unconfiguredProvider struct{}

func (unconfiguredProvider) Name() string { return "none" }

func (unconfiguredProvider) BeginSignIn(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (unconfiguredProvider) CompleteSignIn(context.Context, string) (*Profile, error) {
	return nil, ErrNotConfigured
}

func (unconfiguredProvider) SignOut(context.Context, string) error {
	return nil
}
