package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// AllowedOrigins splits the comma-separated FRONTEND_URL setting into
// origins, always keeping the local dev origin.
func AllowedOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:3000"}
	for _, origin := range strings.Split(frontendURL, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		exists := false
		for _, existing := range origins {
			if existing == trimmed {
				exists = true
				break
			}
		}
		if !exists {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// CORS wraps handlers with rs/cors for the given origins. Preflight
// requests are answered by the middleware itself.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})
	return c.Handler
}

// CORSFromEnv creates CORS middleware from the FRONTEND_URL setting
// (comma-separated origins).
func CORSFromEnv(frontendURL string) func(http.Handler) http.Handler {
	return CORS(AllowedOrigins(frontendURL))
}
