package app_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkdiff/internal/app"
	"github.com/JakeFAU/linkdiff/internal/config"
	"github.com/JakeFAU/linkdiff/internal/extraction"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.History.DataDir = t.TempDir()
	cfg.Server.ShutdownTimeoutSeconds = 2
	return cfg
}

func TestNew_WiresServices(t *testing.T) {
	t.Parallel()

	a, err := app.New(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Store())
	assert.NotNil(t, a.Service())
	assert.NotNil(t, a.Handler())
}

func TestNew_RejectsBadHistoryConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.History.DataDir = ""

	_, err := app.New(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init history store")
}

func TestNew_ExtractsThroughService(t *testing.T) {
	t.Parallel()

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<a href="/docs">docs</a>`)
	}))
	t.Cleanup(target.Close)

	a, err := app.New(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	rec, err := a.Service().Extract(context.Background(), extraction.Request{URL: target.URL})
	require.NoError(t, err)
	assert.Equal(t, []string{target.URL + "/docs"}, rec.AllLinks)

	records, err := a.Store().Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestServeListener_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	a, err := app.New(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.ServeListener(ctx, ln) }()

	url := fmt.Sprintf("http://%s/api/health", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test helper
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(body), `"status":"ok"`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_PortInUse(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	port := ln.Addr().(*net.TCPAddr).Port

	a, err := app.New(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	err = a.Serve(context.Background(), port)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")
}
