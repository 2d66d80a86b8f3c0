// Package api exposes the cached posts over HTTP: paginated/searchable
// listing, per-source views, logo redirects, an on-demand refresh trigger,
// and an SSE stream of new-content events.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"agora/internal/debuglog"
	"agora/internal/model"
	"agora/internal/refresh"
	"agora/internal/store"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Server holds dependencies for the HTTP handlers.
type Server struct {
	store     store.Store
	refresher *refresh.Refresher
	hub       *Hub
	staticDir string
	mux       *http.ServeMux
}

// NewServer wires up routes and returns a ready-to-use Server.
func NewServer(st store.Store, r *refresh.Refresher, hub *Hub, staticDir string) *Server {
	srv := &Server{
		store:     st,
		refresher: r,
		hub:       hub,
		staticDir: staticDir,
		mux:       http.NewServeMux(),
	}
	srv.routes()
	return srv
}

// ServeHTTP makes Server satisfy the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/sources", s.handleListSources)
	s.mux.HandleFunc("GET /api/posts", s.handleListPosts)
	s.mux.HandleFunc("GET /api/posts/new", s.handleNewPosts)
	s.mux.HandleFunc("GET /api/sources/{id}/posts", s.handleSourcePosts)
	s.mux.HandleFunc("GET /api/sources/{id}/logo", s.handleSourceLogo)
	s.mux.HandleFunc("GET /api/debug/posts", s.handleDebugPosts)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)

	if s.staticDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.refresher.Sources())
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q := store.Query{
		Search: r.URL.Query().Get("search"),
		Page:   intParam(r, "page", 1),
		Limit:  intParam(r, "limit", defaultPageLimit),
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}

	res, err := s.store.QueryPosts(r.Context(), q)
	if err != nil {
		s.serverError(w, "listing posts", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNewPosts(w http.ResponseWriter, _ *http.Request) {
	posts := s.refresher.LatestNewPosts()
	if posts == nil {
		posts = []*model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleSourcePosts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	posts, err := s.store.PostsBySource(r.Context(), id)
	if err != nil {
		s.serverError(w, fmt.Sprintf("listing posts for %s", id), err)
		return
	}
	if posts == nil {
		posts = []*model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleSourceLogo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	logoURL, err := s.store.Logo(r.Context(), id)
	if err == store.ErrNotFound {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "logo not found"})
		return
	}
	if err != nil {
		s.serverError(w, fmt.Sprintf("reading logo for %s", id), err)
		return
	}

	http.Redirect(w, r, logoURL, http.StatusFound)
}

// handleDebugPosts reports which posts carry a cover image, for diagnosing
// extraction against a live roster.
func (s *Server) handleDebugPosts(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.QueryPosts(r.Context(), store.Query{Page: 1, Limit: maxPageLimit})
	if err != nil {
		s.serverError(w, "listing posts", err)
		return
	}

	type imageInfo struct {
		Title    string `json:"title"`
		HasImage bool   `json:"hasImage"`
		ImageURL string `json:"imageUrl"`
	}

	info := make([]imageInfo, 0, len(res.Posts))
	for _, p := range res.Posts {
		entry := imageInfo{Title: p.Title, HasImage: p.CoverImage != "", ImageURL: p.CoverImage}
		if entry.ImageURL == "" {
			entry.ImageURL = "none"
		}
		info = append(info, entry)
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.refresher.RefreshAll(r.Context())
	if err != nil {
		s.serverError(w, "refreshing feeds", err)
		return
	}

	if result.NewContentFound {
		s.hub.NotifyNewContent(len(result.NewPosts), previewOf(result.NewPosts))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "feeds refreshed",
		"result":  result,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	events, cancel := s.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-events:
			fmt.Fprintf(w, "event: new-content\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (s *Server) serverError(w http.ResponseWriter, action string, err error) {
	debuglog.Errorf("%s: %v", action, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intParam(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// previewOf caps the broadcast payload at the first five posts.
func previewOf(posts []*model.Post) []*model.Post {
	if len(posts) > 5 {
		return posts[:5]
	}
	return posts
}
