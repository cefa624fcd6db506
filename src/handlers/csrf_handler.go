package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/username/clinicboard/backend/src/logger"
	"github.com/username/clinicboard/backend/src/utils"
)

const csrfCookieName = "_csrf_token"

var csrfAuthKey []byte

// SetCSRFAuthKey installs the HMAC key used to sign issued CSRF tokens.
// Called once at startup before any token is minted.
func SetCSRFAuthKey(key []byte) {
	csrfAuthKey = key
}

func signCSRFValue(value []byte) string {
	mac := hmac.New(sha256.New, csrfAuthKey)
	mac.Write(value)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func mintCSRFToken() (string, error) {
	value := make([]byte, 32)
	if _, err := rand.Read(value); err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(value)
	return encoded + "." + signCSRFValue([]byte(encoded)), nil
}

func validCSRFToken(token string) bool {
	encoded, sig, found := strings.Cut(token, ".")
	if !found {
		return false
	}
	expected := signCSRFValue([]byte(encoded))
	return hmac.Equal([]byte(sig), []byte(expected))
}

// GetCSRFToken issues a signed double-submit token: the same value goes into
// an HttpOnly cookie and the response body, and mutating requests must echo
// it back in the X-CSRF-Token header.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := mintCSRFToken()
	if err != nil {
		logger.L.Error("Failed to generate CSRF token", "error", err)
		utils.SendJSONError(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // behind TLS-terminating proxy in production
		MaxAge:   3600,
	})

	w.Header().Set("X-CSRF-Token", token)
	utils.SendJSON(w, map[string]string{"csrfToken": token}, http.StatusOK)
}

// CSRFMiddleware validates the double-submit pair on every mutating request:
// header and cookie must match and carry a valid signature. Safe methods
// pass through.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	SetCSRFAuthKey(authKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if headerToken != "" && err == nil && headerToken == cookie.Value && validCSRFToken(headerToken) {
				next.ServeHTTP(w, r)
				return
			}

			logger.L.Warn("CSRF validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"origin", r.Header.Get("Origin"),
				"hasHeaderToken", headerToken != "",
				"hasCookie", err == nil)
			utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}
