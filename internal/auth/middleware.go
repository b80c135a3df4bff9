package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// CookieName is the HttpOnly cookie set at login. It is only consulted when
// no Authorization header is present.
const CookieName = "token"

// Authenticate resolves the caller's Identity before any handler runs.
//
//   - no Authorization header and no token cookie: Anonymous, request continues
//   - "Authorization: Bearer <jwt>" (or the cookie) that verifies: the token's identity
//   - anything else (wrong scheme, bad signature, expired): 401, chain stops
//
// Handlers read the result with IdentityFromContext and never see tokens.
func Authenticate(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, present, err := extractToken(r)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}
			if !present {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), Anonymous)))
				return
			}

			id, err := tokens.Validate(raw)
			if err != nil {
				msg := "Invalid JWT token"
				if errors.Is(err, ErrTokenExpired) {
					msg = "JWT token has expired"
				}
				writeUnauthorized(w, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth rejects anonymous callers. It must run after Authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromContext(r.Context()).Authenticated() {
			writeUnauthorized(w, "Authorization header ('Bearer token') not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

var errMalformedHeader = errors.New("Authorization header is malformed")

// extractToken returns the raw JWT, whether credentials were supplied at all,
// and an error when they were supplied in an unusable form.
func extractToken(r *http.Request) (string, bool, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", true, errMalformedHeader
		}
		return token, true, nil
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false, nil
	}
	return cookie.Value, true, nil
}

// writeUnauthorized mirrors the handler package's error body. It is kept
// local so auth does not import handler.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="volcano-explorer"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
