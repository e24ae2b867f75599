package api

import (
	"net/http"

	"github.com/dgallion1/docnav/internal/scanner"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	byFormat := make(map[string]int)
	for _, sess := range list {
		byFormat[sess.Format()]++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":  len(list),
		"by_format": byFormat,
		"rebuilds":  s.sessions.Stats(),
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"formats": scanner.Formats()})
}
