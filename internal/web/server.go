// Package web provides a small web view of the achievement tree.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/metalagman/achievements/internal/achievement"
	"github.com/metalagman/achievements/internal/telemetry"
	"github.com/metalagman/achievements/internal/tracker"
)

// Backend is the tracker surface the web view needs.
type Backend interface {
	View(ctx context.Context) ([]tracker.Node, error)
	Snapshot(ctx context.Context) ([]byte, error)
	Do(ctx context.Context, fn tracker.Op) error
	Submit(ctx context.Context, ev telemetry.Event) error
	Updates() <-chan struct{}
}

// Server provides the web UI handlers and state.
type Server struct {
	backend  Backend
	tmpl     *template.Template
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

//go:embed templates/*.html
var templatesFS embed.FS

// NewServer creates a new web server.
func NewServer(backend Backend) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		backend: backend,
		tmpl:    tmpl,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[chan struct{}]struct{}),
	}, nil
}

// Routes returns the router for the web UI.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("GET /api/tree/raw", s.handleRaw)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("POST /api/events", s.handleEvents)
	mux.HandleFunc("POST /click/{path...}", s.handleOp(tracker.Click))
	mux.HandleFunc("POST /reset/{path...}", s.handleOp(tracker.Reset))
	return mux
}

// Run fans tracker updates out to websocket clients until ctx is done.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.backend.Updates():
			s.broadcast()
		}
	}
}

func (s *Server) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Server) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan struct{}) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.backend.View(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.tmpl.ExecuteTemplate(w, "index.html", nodes); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.backend.View(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(nodes); err != nil {
		log.Warn().Err(err).Msg("write tree")
	}
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	data, err := s.backend.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleOp(op func(achievement.Path) tracker.Op) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := achievement.ParsePath(r.PathValue("path"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.backend.Do(r.Context(), op(p)); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, achievement.ErrNotFound) || errors.Is(err, achievement.ErrInvalidPath) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// handleEvents ingests a JSONL telemetry stream from the game client.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sc := telemetry.NewScanner(r.Body)
	n := 0
	for sc.Scan() {
		if err := s.backend.Submit(r.Context(), sc.Event()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		n++
	}
	if err := sc.Err(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"accepted": n})
}

type wsMsg struct {
	Type  string         `json:"type"`
	Nodes []tracker.Node `json:"nodes"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		nodes, err := s.backend.View(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("websocket view")
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(wsMsg{Type: "tree", Nodes: nodes}); err != nil {
			log.Debug().Err(err).Msg("websocket write")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ch:
		}
	}
}
