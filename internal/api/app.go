// Package api exposes planning over HTTP: a JSON planning endpoint, catalog
// listing, traveler and report downloads, and a live SSE event feed.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fabflow/app"
	"fabflow/ports"
)

// App is the HTTP planning service
type App struct {
	router  *chi.Mux
	planner *app.Planner
	catalog ports.ToolCatalogPort
	events  *EventHub
	version string
}

// Config holds HTTP service configuration
type Config struct {
	Addr string
}

// NewApp wires the HTTP service around a planner and its catalog
func NewApp(planner *app.Planner, catalog ports.ToolCatalogPort, version string) *App {
	a := &App{
		router:  chi.NewRouter(),
		planner: planner,
		catalog: catalog,
		events:  NewEventHub(),
		version: version,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the service routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	a.router.Get("/api/v1/tools", a.handleListTools)
	a.router.Post("/api/v1/flows/plan", a.handlePlan)
	a.router.Post("/api/v1/flows/traveler", a.handleTraveler)
	a.router.Post("/api/v1/flows/report", a.handleReport)
	a.router.Get("/api/v1/events", a.events.HandleSSE)

	a.router.Mount("/debug", middleware.Profiler())
}

// ServeHTTP lets the app mount anywhere an http.Handler goes
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start starts the HTTP server on config.Addr
func (a *App) Start(config Config) error {
	addr := config.Addr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("[API] Serving planning API on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Close releases the event hub's signal hooks
func (a *App) Close() {
	a.events.Close()
}

// errorBody is the JSON error envelope: a human message plus a stable
// machine code.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}
