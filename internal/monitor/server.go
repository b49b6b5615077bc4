package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// NewMux routes /ws to the hub and /healthz to a liveness probe.
func NewMux(h *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// Run serves the hub on addr until ctx is canceled.
func Run(ctx context.Context, addr string, h *Hub) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("monitor listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("monitor server: %w", err)

	case <-ctx.Done():
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("monitor shutdown: %w", err)
		}
		slog.Info("monitor stopped")
		return ctx.Err()
	}
}
