package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/atinyakov/ProfileDesk/internal/middleware"
)

// NewRouter constructs the HTTP handler that serves the profile API.
//
// Routes:
//
//	POST   /user/register                      → authHandler.Register
//	GET    /user/profile/{userId}              → profileHandler.Get
//	GET    /user/profile/{userId}/completion   → profileHandler.Completion
//	POST   /user/profile/{userId}/{section}    → profileHandler.SaveSection
//	DELETE /user/profile/{userId}/{section}    → profileHandler.DeleteSection
//
// Middleware chain (applied in order):
//  1. RequestID, honours an incoming X-Request-Id
//  2. CORS for the browser dashboard
//  3. WithRequestLogging(logger)
//  4. Recoverer
//  5. AllowContentType("application/json"), rejects non-JSON bodies
//
// Every /user/profile route additionally requires BearerAuth.
func NewRouter(
	authHandler *AuthHandler,
	profileHandler *ProfileHandler,
	verifier middleware.TokenVerifier,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", authHandler.Register)

		r.Route("/profile/{userId}", func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))

			r.Get("/", profileHandler.Get)
			r.Get("/completion", profileHandler.Completion)
			r.Post("/{section}", profileHandler.SaveSection)
			r.Delete("/{section}", profileHandler.DeleteSection)
		})
	})

	return r
}
