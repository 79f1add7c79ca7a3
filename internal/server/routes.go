package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - health and version
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// API routes - autopost jobs
	mux.HandleFunc("/api/autopost/start", s.app.AutopostHandler.StartHandler)           // POST - upsert config + immediate run
	mux.HandleFunc("/api/autopost/trigger", s.app.AutopostHandler.TriggerHandler)       // POST - force-run one tenant
	mux.HandleFunc("/api/autopost/deactivate", s.app.AutopostHandler.DeactivateHandler) // POST - flip active off
	mux.HandleFunc("/api/autopost/status", s.app.AutopostHandler.StatusHandler)         // GET - job record
	mux.HandleFunc("/api/autopost/history", s.app.AutopostHandler.HistoryHandler)       // GET - recent outcomes
	mux.HandleFunc("/api/autopost/stats", s.app.AutopostHandler.StatsHandler)           // GET - daily counters

	// API routes - scheduler
	mux.HandleFunc("/api/scheduler/sweep", s.app.SchedulerHandler.SweepHandler)    // POST - manual sweep
	mux.HandleFunc("/api/scheduler/status", s.app.SchedulerHandler.StatusHandler)  // GET - running flag

	// API routes - credentials
	mux.HandleFunc("/api/credentials", s.handleCredentialsRoute) // POST (store), GET (list), DELETE

	// Catch-all for unknown API paths
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleCredentialsRoute routes /api/credentials by method.
func (s *Server) handleCredentialsRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"POST":   s.app.CredentialHandler.StoreHandler,
		"GET":    s.app.CredentialHandler.ListHandler,
		"DELETE": s.app.CredentialHandler.DeleteHandler,
	})
}
