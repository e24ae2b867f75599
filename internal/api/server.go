package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docnav/internal/commands"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docnav.
type Server struct {
	router   chi.Router
	sessions *session.Manager
	display  *config.Display
	commands *commands.Registry
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *session.Manager, display *config.Display, cmds *commands.Registry, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions: sessions,
		display:  display,
		commands: cmds,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/stats", s.handleStats)
		r.Get("/api/formats", s.handleFormats)
		r.Get("/api/commands", s.handleListCommands)
		r.Get("/api/display", s.handleGetDisplay)
		r.Put("/api/display", s.handlePutDisplay)

		r.Get("/api/sessions", s.handleListSessions)
		r.Post("/api/sessions", s.handleOpenSession)
		r.Route("/api/sessions/{id}", func(r chi.Router) {
			r.Use(s.sessionCtx)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleCloseSession)
			r.Put("/text", s.handleUpdateText)
			r.Post("/switch", s.handleSwitch)
			r.Post("/refresh", s.handleRefresh)

			r.Post("/cursors", s.handleAddCursor)
			r.Put("/cursors/{cid}", s.handleMoveCursor)
			r.Delete("/cursors/{cid}", s.handleRemoveCursor)

			r.Put("/viewport", s.handleViewport)
			r.Put("/visible", s.handleVisible)
			r.Get("/search", s.handleSearch)
			r.Get("/folds", s.handleFolds)
			r.Get("/folds/table", s.handleFoldTable)
			r.Get("/markers", s.handleMarkers)
			r.Post("/commands/{name}", s.handleRunCommand)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
