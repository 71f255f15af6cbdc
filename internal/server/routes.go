package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/finote/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Series and cards
	mux.HandleFunc("/api/series", s.handleSeries)
	mux.HandleFunc("/api/cards/total", s.handleCardTotal)

	// Charts
	mux.HandleFunc("/api/charts/", s.routeCharts)
	mux.HandleFunc("/api/charts", s.handleChartList)

	// Stored snapshots
	mux.HandleFunc("/api/snapshots", s.handleSnapshots)
}

// routeCharts dispatches /api/charts/{id} by method.
func (s *Server) routeCharts(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/charts/", "")
	if id == "" {
		s.handleChartList(w, r)
		return
	}
	if !validChartID(id) {
		WriteError(w, http.StatusBadRequest, "Invalid chart id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleChartRender(w, r, id)
	case http.MethodDelete:
		s.handleChartDestroy(w, r, id)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// validChartID accepts short ids made of letters, digits, '-' and '_'.
func validChartID(id string) bool {
	if len(id) > 64 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
