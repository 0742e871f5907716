package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
)

// HTTPServer serves the API on a listener obtained from a security
// layer, so the same server runs plain or behind TLS.
type HTTPServer struct {
	addr   string
	server *http.Server
	logger *logger.Logger
}

var _ model.Server = (*HTTPServer)(nil)

// NewHTTPServer creates an HTTP server for the handler on the given
// port.
func NewHTTPServer(port string, handler http.Handler, logger *logger.Logger) *HTTPServer {
	addr := ":" + port
	return &HTTPServer{
		addr:   addr,
		server: &http.Server{Addr: addr, Handler: handler},
		logger: logger,
	}
}

// Start listens through the security layer and serves until Stop is
// called. It blocks the calling goroutine.
func (s *HTTPServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.logger.Info("http server listening", "address", s.addr)

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server stopped: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *HTTPServer) Address() string {
	return s.addr
}
