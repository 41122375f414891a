// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/villadaniela/fincaweb/internal/api"
	"github.com/villadaniela/fincaweb/internal/api/auth"
	"github.com/villadaniela/fincaweb/internal/api/calendar"
	"github.com/villadaniela/fincaweb/internal/api/dashboard"
	"github.com/villadaniela/fincaweb/internal/api/gallery"
	"github.com/villadaniela/fincaweb/internal/api/home"
	"github.com/villadaniela/fincaweb/internal/api/reviews"
	"github.com/villadaniela/fincaweb/internal/config"
)

func newServer(cfg *config.Config) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithRouteGuard,
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router, cfg)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Public pages
	mux.HandleFunc("GET /{$}", home.HandleHomePage)
	mux.HandleFunc("GET /login", auth.HandleLoginPage)
	mux.HandleFunc("GET /auth/verify-request", auth.HandleVerifyRequestPage)

	// Admin pages (behind the route guard)
	mux.HandleFunc("GET /dashboard", dashboard.HandleDashboardPage)

	// Auth API
	mux.HandleFunc("POST /api/auth/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/auth/magic-link", auth.HandleMagicLink)
	mux.HandleFunc("GET /api/auth/verify", auth.HandleVerify)
	mux.HandleFunc("POST /api/auth/logout", auth.HandleLogout)

	// Public API
	mux.HandleFunc("GET /api/availability", calendar.HandleListRanges)
	mux.HandleFunc("GET /api/gallery", gallery.HandlePublicList)
	mux.HandleFunc("GET /api/reviews", reviews.HandleListReviews)

	// Admin API (behind the route guard)
	mux.HandleFunc("GET /api/admin/fechas-ocupadas", calendar.HandleListRanges)
	mux.HandleFunc("POST /api/admin/fechas-ocupadas", calendar.HandleReplaceRanges)
	mux.HandleFunc("GET /api/admin/imagenes", gallery.HandleAdminList)
	mux.HandleFunc("POST /api/admin/imagenes", gallery.HandleUpload)
	mux.HandleFunc("DELETE /api/admin/imagenes/{id}", gallery.HandleDelete)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Static file handling with logging and environment awareness
	staticDir := cfg.App.StaticDir
	if staticDir == "" {
		staticDir = "build/bin/static"
	}
	fs := http.FileServer(http.Dir(staticDir))

	mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		http.StripPrefix("/static/", fs).ServeHTTP(w, r)
	}))
}
