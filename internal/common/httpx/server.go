package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"canteen-system/internal/common/logger"
)

const shutdownTimeout = 5 * time.Second

// Server has no write timeout so that event streams stay open.
type Server struct {
	*http.Server
	lg *logger.Logger
}

func New(addr string, h http.Handler, lg *logger.Logger) *Server {
	if lg == nil {
		lg = logger.NewNop()
	}
	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		lg: lg,
	}
}

// Run serves until ctx is done, then drains in-flight requests for up to
// shutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe() }()
	s.lg.Info("http_listening", map[string]any{"addr": s.Addr})

	select {
	case <-ctx.Done():
		ctx2, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(ctx2); err != nil {
			s.lg.Warn("http_shutdown_incomplete", map[string]any{"error": err.Error()})
			_ = s.Close()
		}
		s.lg.Info("http_stopped", map[string]any{"addr": s.Addr})
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
