// Package api serves the keeper bot's view of the chain over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-dca-node/keeperbot/metrics"
	"github.com/pushchain/push-dca-node/keeperbot/store"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger  zerolog.Logger
	chain   ChainQuerier
	store   *store.Store
	metrics *metrics.Metrics
	router  *mux.Router
	server  *http.Server
	addr    net.Addr
}

func NewServer(logger zerolog.Logger, port int, chain ChainQuerier, st *store.Store, m *metrics.Metrics) *Server {
	s := &Server{
		logger:  logger.With().Str("component", "api").Logger(),
		chain:   chain,
		store:   st,
		metrics: m,
	}
	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the port and serves in the background. Binding happens
// before it returns, so a taken port is reported to the caller.
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("api server is nil")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
	}
	s.addr = ln.Addr()
	s.logger.Info().Str("addr", s.addr.String()).Msg("api server listening")

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("api server error")
			return
		}
		s.logger.Info().Msg("api server closed")
	}()
	return nil
}

// Addr is the bound address once Start has succeeded.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Stop drains in-flight requests for up to shutdownTimeout.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
