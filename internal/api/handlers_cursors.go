package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type cursorInput struct {
	Row         int  `json:"row"`
	TextChanged bool `json:"text_changed"`
}

func (s *Server) handleAddCursor(w http.ResponseWriter, r *http.Request) {
	var in cursorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	c, err := sessionFrom(r).AddCursor(in.Row)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c.State())
}

func (s *Server) handleMoveCursor(w http.ResponseWriter, r *http.Request) {
	var in cursorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	c, err := sessionFrom(r).Cursor(chi.URLParam(r, "cid"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := c.Move(in.Row, in.TextChanged); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (s *Server) handleRemoveCursor(w http.ResponseWriter, r *http.Request) {
	c, err := sessionFrom(r).Cursor(chi.URLParam(r, "cid"))
	if err != nil {
		writeError(w, err)
		return
	}
	c.Remove()
	w.WriteHeader(http.StatusNoContent)
}
