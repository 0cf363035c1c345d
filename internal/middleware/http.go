package middleware

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
)

// CORS builds the cross-origin handler for the web frontend. With no
// configured origins every origin is allowed.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RateLimit limits requests per client IP; zero disables the limit
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", gin.MIMEJSON)
			w.WriteHeader(http.StatusTooManyRequests)
			body, _ := json.Marshal(models.NewAPIError("RATE_LIMITED", "Too many requests"))
			w.Write(body)
		}),
	)
}

// Wrap applies the HTTP level middleware around the gin engine
func Wrap(handler http.Handler, allowedOrigins []string, perMinute int) http.Handler {
	return CORS(allowedOrigins)(RateLimit(perMinute)(handler))
}
