package httpapi

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServeFailureStopsShutdownWatcher(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewJSONSlogLogger(&buf, "info")
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	s := NewServer("", http.NotFoundHandler(), logger)
	err = s.Serve(context.Background(), l)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Stopping HTTP server", "watcher goroutine must exit before Serve returns")
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer("", http.NotFoundHandler(), logging.Nop{})

	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
