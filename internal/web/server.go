// Package web provides a read-only web UI over stored runs.
package web

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/copyforge/copyforge/internal/store"
)

// Server provides the web UI handlers and state.
type Server struct {
	store *store.Store
}

// NewServer creates a new web server over st.
func NewServer(st *store.Store) (*Server, error) {
	return &Server{store: st}, nil
}

//go:embed templates/*.html
var templatesFS embed.FS

// Routes returns the router for the web UI.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	runs, err := s.store.ListRuns(r.Context(), 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tmpl.Execute(w, runs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type runPage struct {
	Run       store.RunRecord
	Artifacts []artifactView
	Events    []store.EventRecord
}

type artifactView struct {
	Phase   string
	Payload string
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad run id", http.StatusBadRequest)
		return
	}

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	artifacts, err := s.store.ListArtifacts(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	events, err := s.store.ListEvents(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page := runPage{Run: run, Events: events}
	for _, a := range artifacts {
		page.Artifacts = append(page.Artifacts, artifactView{Phase: a.Phase, Payload: indent(a.Payload)})
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/run.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, page); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func indent(raw json.RawMessage) string {
	var out any
	if err := json.Unmarshal(raw, &out); err == nil {
		if buf, err := json.MarshalIndent(out, "", "  "); err == nil {
			return string(buf)
		}
	}
	return string(raw)
}
