package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docnav/internal/commands"
	"github.com/dgallion1/docnav/internal/scanner"
	"github.com/dgallion1/docnav/internal/session"
)

// documentInput is a document upload. Binary formats send Data, which
// JSON carries base64 encoded.
type documentInput struct {
	Filename string           `json:"filename"`
	Format   string           `json:"format"`
	Text     string           `json:"text"`
	Data     []byte           `json:"data"`
	Changes  []session.Change `json:"changes"`
}

func (in documentInput) content() []byte {
	if len(in.Data) > 0 {
		return in.Data
	}
	return []byte(in.Text)
}

// format resolves the scanner format. Unknown formats are kept as given;
// such sessions have no outline.
func (in documentInput) format() string {
	if f, err := scanner.Resolve(in.Format, in.Filename); err == nil {
		return f
	}
	return in.Format
}

// readDocument decodes a JSON body or a multipart upload with a "file" part.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (documentInput, bool) {
	var in documentInput
	if max := s.cfg.MaxDocumentBytes; max > 0 {
		// Base64 and form overhead.
		r.Body = http.MaxBytesReader(w, r.Body, max*2+1024*1024)
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			bodyError(w, "invalid multipart form: ", err)
			return in, false
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return in, false
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			bodyError(w, "failed to read file: ", err)
			return in, false
		}
		in.Filename = sanitizeFilename(header.Filename)
		in.Format = r.FormValue("format")
		in.Data = data
		return in, true
	}

	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		bodyError(w, "invalid json body: ", err)
		return in, false
	}
	in.Filename = sanitizeFilename(in.Filename)
	return in, true
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	sess, err := s.sessions.Open(in.Filename, in.format(), in.content())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"format":     sess.Format(),
		"supported":  sess.Supported(),
		"url":        fmt.Sprintf("/api/sessions/%s", sess.ID),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	out := make([]map[string]any, 0, len(list))
	for _, sess := range list {
		out = append(out, map[string]any{
			"session_id": sess.ID,
			"filename":   sess.Filename(),
			"format":     sess.Format(),
			"updated_at": sess.UpdatedAt(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(sessionFrom(r).ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateText(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	if err := sessionFrom(r).Update(in.content(), in.Changes...); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	sess := sessionFrom(r)
	if err := sess.Switch(in.Filename, in.format(), in.content()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"session_id": sess.ID,
		"format":     sess.Format(),
		"supported":  sess.Supported(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := sessionFrom(r).Refresh(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func bodyError(w http.ResponseWriter, prefix string, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		jsonError(w, session.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, prefix+err.Error(), http.StatusBadRequest)
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrNoCursor),
		errors.Is(err, commands.ErrUnknown):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrClosed):
		jsonError(w, err.Error(), http.StatusGone)
	case errors.Is(err, session.ErrTooLarge):
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, commands.ErrNoSession):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
