package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	cleanupInterval   = time.Minute
)

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	address string
	handler http.Handler
	limiter *IPRateLimiter
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, engine *gin.Engine, limiter *IPRateLimiter) *Server {
	return &Server{
		address: address,
		handler: engine,
		limiter: limiter,
		logger:  l.With("module", "http_server"),
	}
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if s.limiter != nil {
		s.limiter.StartCleanup(ctx, cleanupInterval)
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
