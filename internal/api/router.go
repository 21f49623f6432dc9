package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/user-directory/internal/api/handlers"
	"github.com/baharkarakas/user-directory/internal/config"
	"github.com/baharkarakas/user-directory/internal/metrics"
	"github.com/baharkarakas/user-directory/internal/middleware"
	"github.com/baharkarakas/user-directory/internal/services"
)

func NewRouter(cfg config.Config, log *slog.Logger, us *services.UserService) http.Handler {
	authH := handlers.NewAuthHandler(us)
	usersH := handlers.NewUsersHandler(us)
	authMW := middleware.NewAuthMiddleware(us)

	r := chi.NewRouter()
	r.Use(middleware.RequestID(log), middleware.Recover, middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.With(authMW.Auth).Get("/auth/me", authH.Me)

		// ---------- users ----------
		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)
			r.Get("/users", usersH.List)
			r.Get("/users/{id}", usersH.Get)
			r.Put("/users/{id}", usersH.Update)
			r.Delete("/users/{id}", usersH.Delete)
		})

		r.Get("/stats", usersH.Stats)
	})

	return r
}
