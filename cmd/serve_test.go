package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/life-td/targetdb-cli/internal/buildlog"
)

func TestResolvePort(t *testing.T) {
	assert.Equal(t, 9000, resolvePort(9000, 8080))
	assert.Equal(t, 8080, resolvePort(0, 8080))
}

func TestValidTable(t *testing.T) {
	assert.True(t, validTable("star_basic"))
	assert.True(t, validTable("mes_sep_ang"))
	assert.False(t, validTable("no_such_table"))
	assert.False(t, validTable("../etc/passwd"))
}

func testServeStore(t *testing.T) *buildlog.Store {
	t.Helper()
	store, err := buildlog.Open(filepath.Join(t.TempDir(), "buildlog.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRouter_UnknownTableRejected(t *testing.T) {
	ts := httptest.NewServer(buildRouter(testServeStore(t), t.TempDir()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/tables/no_such_table")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ListBuilds(t *testing.T) {
	ts := httptest.NewServer(buildRouter(testServeStore(t), t.TempDir()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/builds")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestStartServer_GracefulShutdown(t *testing.T) {
	// Grab a free port, then release it for the server.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := buildRouter(testServeStore(t), t.TempDir())
	errCh := make(chan error, 1)
	go func() {
		errCh <- startServer(ctx, handler, port)
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	ready := false
	for i := 0; i < 30; i++ {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			ready = resp.StatusCode == http.StatusOK
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, ready, "server never became ready")

	// Cancelling the run context must drain and return cleanly, not abort.
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
