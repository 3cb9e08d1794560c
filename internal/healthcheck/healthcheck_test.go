package healthcheck

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

func TestNormalizeListen(t *testing.T) {
	t.Parallel()

	if got := NormalizeListen("  127.0.0.1:8099  "); got != "127.0.0.1:8099" {
		t.Fatalf("NormalizeListen() = %q", got)
	}
	if got := NormalizeListen("   "); got != "" {
		t.Fatalf("NormalizeListen(blank) = %q, want empty", got)
	}
}

func TestStartServerServesHealthz(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := StartServer(logger, "127.0.0.1:0", "humanloop")
	if err != nil {
		t.Fatalf("StartServer() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	resp, err := http.Get("http://" + srv.Addr + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var payload struct {
		OK        bool   `json:"ok"`
		Component string `json:"component"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !payload.OK || payload.Component != "humanloop" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestStartServerBadListenAddr(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := StartServer(logger, "not-an-address", "humanloop"); err == nil {
		t.Fatalf("StartServer() with bad address error = nil")
	}
}
