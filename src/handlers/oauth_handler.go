package handlers

import (
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/username/fintrack/backend/src/identity"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/utils"
)

// OAuthHandler drives the browser side of the Google redirect flow.
type OAuthHandler struct {
	identity        *identity.Service
	frontendBaseURL string
}

func NewOAuthHandler(identityService *identity.Service, frontendBaseURL string) *OAuthHandler {
	return &OAuthHandler{
		identity:        identityService,
		frontendBaseURL: frontendBaseURL,
	}
}

func (h *OAuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.identity.BeginSignIn(r.Context())
	if err != nil {
		if errors.Is(err, identity.ErrNotConfigured) {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error":  err.Error(),
				"notice": identity.NotConfiguredNotice,
			})
			return
		}
		logger.FromContext(r.Context()).Error("Failed to begin Google sign-in", "error", err)
		utils.SendJSONError(w, "failed to start sign-in", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if providerErr := r.FormValue("error"); providerErr != "" {
		log.Warn("Google returned an error to the callback", "error", providerErr)
		h.redirectWithError(w, r, "access_denied")
		return
	}

	result, err := h.identity.CompleteSignIn(r.Context(), r.FormValue("state"), r.FormValue("code"), r.UserAgent(), clientIP(r))
	if err != nil {
		code := "sign_in_failed"
		switch {
		case errors.Is(err, identity.ErrNotConfigured):
			code = "not_configured"
		case errors.Is(err, identity.ErrInvalidState):
			code = "invalid_state"
		case errors.Is(err, identity.ErrEmailNotVerified):
			code = "email_not_verified_by_google"
		}
		log.Warn("Google sign-in failed", "reason", code, "error", err)
		h.redirectWithError(w, r, code)
		return
	}

	redirectURL := h.frontendBaseURL + "/auth/google/callback?token=" + url.QueryEscape(result.Token)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.frontendBaseURL+"/signin?error="+url.QueryEscape(code), http.StatusTemporaryRedirect)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
