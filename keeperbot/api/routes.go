package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/vaults/{id:[0-9]+}", s.handleVault).Methods(http.MethodGet)
	v1.HandleFunc("/vaults/{id:[0-9]+}/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	v1.HandleFunc("/vaults/{id:[0-9]+}/events", s.handleVaultEvents).Methods(http.MethodGet)
	v1.HandleFunc("/vaults/{id:[0-9]+}/performance", s.handlePerformance).Methods(http.MethodGet)
	v1.HandleFunc("/owners/{owner}/vaults", s.handleOwnerVaults).Methods(http.MethodGet)
	v1.HandleFunc("/in-flight", s.handleInFlight).Methods(http.MethodGet)
	v1.HandleFunc("/sweeps", s.handleSweeps).Methods(http.MethodGet)
	v1.HandleFunc("/events/counts", s.handleEventCounts).Methods(http.MethodGet)

	return r
}
