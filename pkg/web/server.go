// Package web exposes the hot graph command surface over HTTP: focus,
// neighbors, path, zone, dirty, sync and stats, plus an SSE stream of
// sync progress.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/synthline/hotgraph/pkg/hotgraph"
	"github.com/synthline/hotgraph/pkg/logging"
	"github.com/synthline/hotgraph/pkg/model"
	"github.com/synthline/hotgraph/pkg/pubsub"
)

// Server routes the HTTP command surface to a hotgraph service.
type Server struct {
	router         *mux.Router
	svc            *hotgraph.Service
	publisher      pubsub.Publisher
	logger         *slog.Logger
	defaultMaxHops int
}

// NewServer wires the routes and hooks sync state transitions into the
// SSE publisher.
func NewServer(svc *hotgraph.Service, logger *slog.Logger, defaultMaxHops int) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		router:         mux.NewRouter(),
		svc:            svc,
		publisher:      pubsub.NewSSEPublisher(logger),
		logger:         logger,
		defaultMaxHops: defaultMaxHops,
	}
	svc.OnSyncState = func(state hotgraph.SyncState, rev model.Revision) {
		_ = s.publisher.Publish(pubsub.TopicSyncStatus, string(state), pubsub.SyncStatus{
			State:    string(state),
			Revision: uint64(rev),
		})
		// A completed cycle changes revision, cache and dirty counts all at
		// once; push the fresh diagnostics alongside the idle transition.
		if state == hotgraph.StateIdle {
			_ = s.publisher.Publish(pubsub.TopicCacheStats, "stats", svc.Stats())
		}
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.Middleware(s.logger))

	s.router.HandleFunc("/api/neighbors/{id}", s.handleNeighbors).Methods("GET")
	s.router.HandleFunc("/api/path", s.handlePath).Methods("GET")
	s.router.HandleFunc("/api/zone/{name}", s.handleZone).Methods("GET")
	s.router.HandleFunc("/api/zones", s.handleZones).Methods("GET")
	s.router.HandleFunc("/api/focus", s.handleFocus).Methods("POST")
	s.router.HandleFunc("/api/dirty", s.handleDirty).Methods("POST")
	s.router.HandleFunc("/api/sync", s.handleSync).Methods("POST")
	s.router.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("starting web server", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	nbrs, err := s.svc.Neighbors(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"id": id, "neighbors": nbrs})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := q.Get("start")
	end := q.Get("end")
	if start == "" || end == "" {
		http.Error(w, "start and end are required", http.StatusBadRequest)
		return
	}
	maxHops := s.defaultMaxHops
	if v := q.Get("maxHops"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "maxHops must be an integer", http.StatusBadRequest)
			return
		}
		maxHops = n
	}
	path, err := s.svc.Path(start, end, maxHops)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"path": path, "hops": len(path) - 1})
}

func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	members, err := s.svc.ZoneMembers(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"zone": name, "members": members})
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{"zones": s.svc.ZoneNames()})
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	count := s.svc.Focus(req.IDs...)
	s.writeJSON(w, map[string]interface{}{"focused": count})
}

func (s *Server) handleDirty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	count, err := s.svc.MarkDirty(req.IDs...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"dirty": count})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Expect uint64 `json:"expect,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	rev, err := s.svc.Sync(r.Context(), model.Revision(req.Expect))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"revision": uint64(rev)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.svc.Stats())
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	switch topic {
	case pubsub.TopicSyncStatus, pubsub.TopicCacheStats:
	default:
		http.Error(w, "unknown topic", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var notFound *model.NotFoundError
	var notReachable *model.NotReachableError
	var conflict *model.ConflictError
	var persistence *model.PersistenceError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &notReachable):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		status = http.StatusConflict
	case errors.As(err, &persistence):
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
