package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dgallion1/docnav/internal/commands"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	var out []map[string]any
	for _, c := range s.commands.List() {
		out = append(out, map[string]any{
			"name":        c.Name,
			"description": c.Description,
			"document":    c.Document,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": out})
}

// handleRunCommand runs a named command against the session. The body is
// optional and may name the acting cursor and a search query.
func (s *Server) handleRunCommand(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CursorID string `json:"cursor_id"`
		Query    string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	name := chi.URLParam(r, "name")
	res, err := s.commands.Run(r.Context(), name, commands.Env{
		Display:  s.display,
		Session:  sessionFrom(r),
		CursorID: in.CursorID,
		Query:    in.Query,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Display != nil {
		s.persistDisplay(*res.Display)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetDisplay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.display.Snapshot())
}

// handlePutDisplay replaces the display state. Omitted fields keep their
// current values.
func (s *Server) handlePutDisplay(w http.ResponseWriter, r *http.Request) {
	in := s.display.Snapshot()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	switch in.Tree {
	case config.TreeExpand, config.TreeCollapse, config.TreeAuto:
	default:
		jsonError(w, "unknown tree mode: "+string(in.Tree), http.StatusBadRequest)
		return
	}
	if in.Categories == nil {
		in.Categories = config.DefaultDisplay().Categories
	}
	st := s.display.Update(func(st *config.DisplayState) { *st = in })
	s.persistDisplay(st)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) persistDisplay(st config.DisplayState) {
	if s.cfg.DisplayFile == "" {
		return
	}
	if err := config.SaveDisplayFile(s.cfg.DisplayFile, st); err != nil {
		s.log.Error("save display file failed", "path", s.cfg.DisplayFile, "error", err)
	}
}
