// Package healthcheck serves a minimal liveness endpoint for deployments
// that supervise the bridge.
package healthcheck

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// NormalizeListen trims a listen address; an empty result disables the
// health server.
func NormalizeListen(addr string) string {
	return strings.TrimSpace(addr)
}

// StartServer serves GET /healthz on listen until Shutdown is called on
// the returned server.
func StartServer(logger *slog.Logger, listen, component string) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":        true,
			"component": component,
		})
	})
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("health_server_error", "error", err.Error())
		}
	}()
	logger.Info("health_server_started", "addr", ln.Addr().String(), "component", component)
	return srv, nil
}
