package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// The app ships with a bundled frontend served from the same host; the
// extra origins cover local development against a separate dev server.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// CORS returns middleware that applies the API's allowed origin policy.
// Relaxed mode (non-production) admits any origin; credentials are only
// honored against the fixed origin list.
func CORS(relaxed bool) func(http.Handler) http.Handler {
	origins := defaultCORSOrigins
	credentials := true
	if relaxed {
		origins = []string{"*"}
		credentials = false
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: credentials,
		MaxAge:           300,
	}).Handler
}
