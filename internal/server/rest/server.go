// Package rest runs the fiber application on a TCP listener and stops it
// gracefully when the context is cancelled.
package rest

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop.
const ShutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

func NewHTTPServer(address string, app *fiber.App, l logging.Logger) *HTTPServer {
	return &HTTPServer{
		address: address,
		app:     app,
		logger:  l.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled or the listener fails.
func (s *HTTPServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := s.app.Listener(listen); err != nil {
		return err
	}
	<-stopped
	return nil
}
