package server_test

import (
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/Tyrowin/relaychat/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://relaychat.test"

type testEnv struct {
	srv  *server.Server
	http *httptest.Server
}

func newTestEnv(t *testing.T, customize func(cfg *server.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := server.NewConfig()
	cfg.AllowedOrigins = []string{testOrigin}
	if customize != nil {
		customize(cfg)
	}

	registry, errs := channel.NewRegistry(cfg.NamePolicy, cfg.SeedChannels...)
	require.Empty(t, errs)

	srv := server.New(*cfg, registry, logs.GetLoggerFromLevel(slog.LevelError))
	srv.StartHub()
	httpServer := httptest.NewServer(srv.SetupRoutes())

	t.Cleanup(func() {
		_ = srv.Hub().Shutdown(2 * time.Second)
		httpServer.Close()
	})
	return &testEnv{srv: srv, http: httpServer}
}

func (e *testEnv) url(path string) string {
	return e.http.URL + path
}

func (e *testEnv) waitForClients(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.srv.Hub().ClientCount() == n
	}, 2*time.Second, 5*time.Millisecond)
}
