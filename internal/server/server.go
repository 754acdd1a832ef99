package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/dianafit/internal/metrics"
	"github.com/claude/dianafit/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker *tracker.Tracker
	metrics *metrics.Manager
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the API open to local callers.
func New(t *tracker.Tracker, m *metrics.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		tracker: t,
		metrics: m,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}

		// Content
		r.Get("/plans", s.handlePlans)
		r.Get("/plans/active/passes", s.handleActivePasses)
		r.Get("/recipes", s.handleRecipes)
		r.Get("/recipes/{id}", s.handleRecipe)
		r.Get("/guidance", s.handleGuidance)

		// Workout session
		r.Get("/session", s.handleGetSession)
		r.Post("/session", s.handleStartSession)
		r.Delete("/session", s.handleCancelSession)
		r.Post("/session/quick-start", s.handleQuickStart)
		r.Post("/session/sets", s.handleCompleteSet)
		r.Post("/session/navigate", s.handleNavigate)
		r.Post("/session/skip-rest", s.handleSkipRest)
		r.Post("/session/finish", s.handleFinish)
		r.Post("/session/switch-detailed", s.handleSwitchDetailed)
		r.Post("/session/rows/toggle", s.handleToggleRow)
		r.Put("/session/rows/weight", s.handleRowWeight)

		// Shopping list
		r.Get("/shopping", s.handleShoppingList)
		r.Delete("/shopping", s.handleClearShopping)
		r.Post("/shopping/recipes", s.handleAddShoppingRecipe)
		r.Delete("/shopping/recipes/{entryID}", s.handleRemoveShoppingRecipe)
		r.Post("/shopping/items/{itemID}/toggle", s.handleToggleShoppingItem)

		// History, calendar, settings, backup
		r.Get("/history", s.handleHistory)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/calendar/days/{date}", s.handleDayWorkouts)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
		r.Get("/backup", s.handleExport)
		r.Post("/backup", s.handleImport)
		r.Post("/data/clear", s.handleClearAll)
	})
}

// SetMetricsHandler exposes h at /metrics.
func (s *Server) SetMetricsHandler(h http.Handler) {
	s.router.Handle("/metrics", h)
}

// SetFrontend mounts a static web shell.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
