package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
)

// NewCORS builds the CORS wrapper. Allowed origins come from
// CORS_ALLOWED_ORIGINS (comma separated); empty means same-origin
// deployments plus local development.
func NewCORS() func(http.Handler) http.Handler {
	origins := []string{"http://localhost:5173", "http://localhost:8080"}
	if env := os.Getenv("CORS_ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler
}
