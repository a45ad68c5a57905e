package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/security"
	"github.com/username/fintrack/backend/src/utils"
)

const (
	csrfCookieName = "_fintrack_csrf"
	csrfHeaderName = "X-CSRF-Token"
)

// The cookie holds "token.signature". The client echoes the token part in the
// X-CSRF-Token header.
func signCSRF(authKey []byte, token string) string {
	mac := hmac.New(sha256.New, authKey)
	mac.Write([]byte(token))
	return token + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verifyCSRF(authKey []byte, cookieValue, headerToken string) bool {
	token, _, found := strings.Cut(cookieValue, ".")
	if !found || token == "" || headerToken == "" {
		return false
	}
	expected := signCSRF(authKey, token)
	return hmac.Equal([]byte(expected), []byte(cookieValue)) && hmac.Equal([]byte(token), []byte(headerToken))
}

// GetCSRFToken issues a fresh token as a cookie, a response header and JSON.
func GetCSRFToken(authKey []byte, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := security.RandomToken()
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to generate CSRF token", "error", err)
			utils.SendJSONError(w, "failed to generate CSRF token", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     csrfCookieName,
			Value:    signCSRF(authKey, token),
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
			HttpOnly: true,
			Secure:   secure,
			MaxAge:   3600,
		})
		w.Header().Set(csrfHeaderName, token)
		utils.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
	}
}

// CSRFMiddleware rejects state-changing requests whose header token does not
// match the signed cookie.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(csrfCookieName)
			if err == nil && verifyCSRF(authKey, cookie.Value, r.Header.Get(csrfHeaderName)) {
				next.ServeHTTP(w, r)
				return
			}

			logger.FromContext(r.Context()).Warn("CSRF validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"origin", r.Header.Get("Origin"),
				"hasCookie", err == nil)
			utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}
