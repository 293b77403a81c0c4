/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend (origins from config)

ROUTE GROUPS:
  /api/users/*          Forecasts, scenarios and records per user
  /api/collisions       Standalone collision analysis
  /api/demo/*           Demo households
  /api/alerts/*         Alert runs
  /api/reset            Database reset (dev only)
  /*                    Static files (frontend), when configured

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string

	// StaticDir holds a built frontend. Empty or missing serves an index page.
	StaticDir string

	// Quiet disables request logging (tests).
	Quiet bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	if !opts.Quiet {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Get("/{id}/forecast", h.GetForecast)
			r.Post("/{id}/scenario", h.EvaluateScenario)
			r.Get("/{id}/{kind}", h.ListRecords)
			r.Post("/{id}/{kind}", h.SaveRecord)
			r.Delete("/{id}/{kind}/{recordID}", h.DeleteRecord)
		})

		r.Post("/collisions", h.DetectCollisions)

		r.Route("/demo", func(r chi.Router) {
			r.Get("/", h.ListDemos)
			r.Post("/load", h.LoadDemo)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.ListAlerts)
			r.Post("/run", h.RunAlerts)
		})

		r.Post("/reset", h.ResetDatabase)
	})

	staticDir := opts.StaticDir
	if staticDir != "" {
		if _, err := os.Stat(staticDir); err != nil {
			staticDir = ""
		}
	}

	if staticDir != "" {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))

			// SPA routing: unknown paths get index.html
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Cash-Flow Forecast Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Cash-Flow Forecast Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/users">/api/users</a> - Users with records</li>
<li><a href="/api/demo">/api/demo</a> - Demo households</li>
<li><a href="/api/alerts">/api/alerts</a> - Alert runs</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
