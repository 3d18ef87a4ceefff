package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS configures browser access for the marketplace frontend.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key", "X-Session-ID"},
		MaxAge:         300,
	})
	return c.Handler
}
