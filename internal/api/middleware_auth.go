package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tallerhub/taller-status/internal/core"
)

// KeyAuth returns a middleware that validates Bearer token authentication.
// Requests to paths in skipPaths bypass authentication.
func KeyAuth(apiKey string, skipPaths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="taller-status"`)
				WriteError(w, http.StatusUnauthorized, &core.APIError{
					Code:    core.ErrCodeUnauthorized,
					Message: "Missing or malformed Authorization header.",
				})
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				WriteError(w, http.StatusForbidden, &core.APIError{
					Code:    core.ErrCodeForbidden,
					Message: "Invalid API key.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
