package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/ecktms/internal/buildinfo"
	"github.com/xelth-com/ecktms/internal/metrics"
	"github.com/xelth-com/ecktms/internal/middleware"
	"github.com/xelth-com/ecktms/internal/session"
	"github.com/xelth-com/ecktms/internal/sync"
	"github.com/xelth-com/ecktms/internal/websocket"
	"go.uber.org/zap"
)

// Router wraps the mux router and the sync engine it exposes to the local UI
type Router struct {
	*mux.Router
	local   *mux.Router
	service *sync.Service
	runner  *sync.AutoSyncRunner
	session *session.State
	hub     *websocket.Hub
	log     *zap.SugaredLogger
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(service *sync.Service, runner *sync.AutoSyncRunner, state *session.State, hub *websocket.Hub, log *zap.SugaredLogger) *Router {
	r := &Router{
		Router:  mux.NewRouter(),
		service: service,
		runner:  runner,
		session: state,
		hub:     hub,
		log:     log,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Prometheus scrape endpoint
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Change events for the UI
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(r.hub, w, req)
	})

	// Local sync routes
	local := r.PathPrefix("/api/local").Subrouter()
	r.local = local
	local.HandleFunc("/autosync", r.runAutoSync).Methods("POST")
	local.HandleFunc("/{collection}", r.loadCollection).Methods("GET")
	local.HandleFunc("/{collection}", r.saveEntity).Methods("POST")
	local.HandleFunc("/{collection}/pending", r.listPending).Methods("GET")
	local.HandleFunc("/{collection}/pending/{localId}", r.discardPending).Methods("DELETE")
	local.HandleFunc("/{collection}/{id:[0-9]+}", r.deleteEntity).Methods("DELETE")

	return r
}

// RequireToken protects the /api/local routes with bridge tokens signed by secret.
// An empty secret leaves them open.
func (r *Router) RequireToken(secret string) {
	r.local.Use(middleware.Auth(secret))
}

// healthCheck returns the health status of the bridge
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	pending := make(map[string]int)
	for _, collection := range r.runner.Collections(req.Context()) {
		pending[collection] = r.service.PendingCount(req.Context(), collection)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"build":     buildinfo.Get(),
		"session":   r.session.Flags(),
		"pending":   pending,
		"wsClients": r.hub.ClientCount(),
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
