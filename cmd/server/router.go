package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/account-api/internal/api/middleware"
	"github.com/phrazzld/account-api/internal/metrics"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if app.config.Server.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewRequestLogger(app.metrics))
	r.Use(middleware.Recoverer)

	h := app.handler

	r.Post("/signup", h.SignUp)
	r.With(app.loginLimiter.Middleware).Post("/login", h.Login)
	r.Get("/get_user_profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)
	r.Delete("/account", h.DeleteAccount)
	r.With(app.resetLimiter.Middleware).Post("/reset_password", h.ResetPassword)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	if app.config.Metrics.Enabled {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(app.registry))
	}

	return r
}
