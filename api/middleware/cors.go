package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/firn-fr/dashboard-backend/pkg/config"
)

// CORS returns middleware that applies the dashboard's allowed origin
// policy. The pagination header is exposed so the frontend can follow
// relayed order pages.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Shopify-Link", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
