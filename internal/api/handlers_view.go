package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/docnav/internal/fold"
	"github.com/dgallion1/docnav/internal/search"
)

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Top    int `json:"top"`
		Bottom int `json:"bottom"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := sessionFrom(r).SetViewport(in.Top, in.Bottom); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := sessionFrom(r).SetVisibleIDs(in.IDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSearch filters with q, or with the session's active query when q
// is absent. It does not change the active query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	q := sess.Query()
	if r.URL.Query().Has("q") {
		q = r.URL.Query().Get("q")
	}
	results := sess.Search(q)
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "results": results})
}

// handleFolds returns the recorded folds and, with a row parameter, the
// section that folding at row and depth would cover.
func (s *Server) handleFolds(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	out := map[string]any{"folds": nonNil(sess.Folds())}

	q := r.URL.Query()
	if q.Get("row") != "" {
		row, err := strconv.Atoi(q.Get("row"))
		if err != nil || row < 0 {
			jsonError(w, "row must be a non-negative integer", http.StatusBadRequest)
			return
		}
		depth := 0
		if v := q.Get("depth"); v != "" {
			depth, err = strconv.Atoi(v)
			if err != nil || depth < 0 {
				jsonError(w, "depth must be a non-negative integer", http.StatusBadRequest)
				return
			}
		}
		if rng, ok := sess.SectionAt(row, depth); ok {
			out["section"] = rng
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFoldTable(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	writeJSON(w, http.StatusOK, map[string]any{"ranges": nonNil(sessionFrom(r).TableRanges(tag))})
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	markers := sessionFrom(r).Markers()
	if markers == nil {
		writeJSON(w, http.StatusOK, map[string]any{"markers": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"markers": markers})
}

func nonNil(r []fold.Range) []fold.Range {
	if r == nil {
		return []fold.Range{}
	}
	return r
}
