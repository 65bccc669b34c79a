package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pushchain/push-dca-node/keeperbot/store"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write response")
	}
}

func (s *Server) writeData(w http.ResponseWriter, data any, fetched time.Time) {
	s.writeJSON(w, http.StatusOK, QueryResponse{Data: data, LastFetched: fetched})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, ErrorResponse{Error: msg})
}

// writeChainError maps a chain query status onto an http status.
func (s *Server) writeChainError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch status.Code(err) {
	case codes.NotFound:
		code = http.StatusNotFound
	case codes.InvalidArgument:
		code = http.StatusBadRequest
	case codes.Unavailable:
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("chain query failed")
	}
	s.writeError(w, code, status.Convert(err).Message())
}

func vaultID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

func queryUint(r *http.Request, key string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func pageLimit(r *http.Request) (int, error) {
	limit, err := queryUint(r, "limit", defaultPageLimit)
	if err != nil {
		return 0, err
	}
	if limit == 0 || limit > maxPageLimit {
		return 0, errors.New("limit must be between 1 and 1000")
	}
	return int(limit), nil
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleVault handles GET /api/v1/vaults/{id}
func (s *Server) handleVault(w http.ResponseWriter, r *http.Request) {
	id, err := vaultID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid vault id")
		return
	}
	resp, err := s.chain.Vault(r.Context(), id)
	if err != nil {
		s.writeChainError(w, err)
		return
	}
	s.writeData(w, resp, s.chain.BlockTime())
}

// handleSnapshot handles GET /api/v1/vaults/{id}/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := vaultID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid vault id")
		return
	}
	snap, err := s.store.Snapshot(id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Uint64("vault_id", id).Msg("snapshot query failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	s.writeData(w, snap, snap.ObservedAt)
}

// handleVaultEvents handles GET /api/v1/vaults/{id}/events?after=<event id>&limit=<n>
func (s *Server) handleVaultEvents(w http.ResponseWriter, r *http.Request) {
	id, err := vaultID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid vault id")
		return
	}
	var after *uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		cursor, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid after parameter")
			return
		}
		after = &cursor
	}
	limit, err := pageLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.store.EventsByVault(id, after, limit)
	if err != nil {
		s.logger.Error().Err(err).Uint64("vault_id", id).Msg("event query failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	fetched := time.Time{}
	if len(records) > 0 {
		fetched = records[len(records)-1].CreatedAt
	}
	s.writeData(w, records, fetched)
}

// handlePerformance handles GET /api/v1/vaults/{id}/performance
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	id, err := vaultID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid vault id")
		return
	}
	resp, err := s.chain.Performance(r.Context(), id)
	if err != nil {
		s.writeChainError(w, err)
		return
	}
	s.writeData(w, resp, s.chain.BlockTime())
}

// handleOwnerVaults handles GET /api/v1/owners/{owner}/vaults
func (s *Server) handleOwnerVaults(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	snaps, err := s.store.SnapshotsByOwner(owner)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("snapshot query failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load snapshots")
		return
	}
	var fetched time.Time
	for _, snap := range snaps {
		if snap.ObservedAt.After(fetched) {
			fetched = snap.ObservedAt
		}
	}
	s.writeData(w, snaps, fetched)
}

// handleInFlight handles GET /api/v1/in-flight
func (s *Server) handleInFlight(w http.ResponseWriter, r *http.Request) {
	execs, err := s.chain.InFlightExecutions(r.Context())
	if err != nil {
		s.writeChainError(w, err)
		return
	}
	s.writeData(w, execs, s.chain.BlockTime())
}

// handleSweeps handles GET /api/v1/sweeps?limit=<n>
func (s *Server) handleSweeps(w http.ResponseWriter, r *http.Request) {
	limit, err := pageLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := s.store.RecentSweeps(limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep query failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load sweeps")
		return
	}
	var fetched time.Time
	if len(runs) > 0 {
		fetched = runs[0].BlockTime
	}
	s.writeData(w, runs, fetched)
}

// handleEventCounts handles GET /api/v1/events/counts
func (s *Server) handleEventCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountEventsByType()
	if err != nil {
		s.logger.Error().Err(err).Msg("event count query failed")
		s.writeError(w, http.StatusInternalServerError, "failed to count events")
		return
	}
	s.writeData(w, counts, time.Now().UTC())
}
