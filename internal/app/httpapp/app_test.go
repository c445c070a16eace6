package httpapp

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"tenant_match/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_ServeAndStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := New(slogdiscard.NewDiscardLogger(), handler, Config{
		Address:     l.Addr().String(),
		Timeout:     time.Second,
		IdleTimeout: time.Second,
	})

	done := make(chan error, 1)
	go func() { done <- app.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, app.Stop(ctx))
	assert.NoError(t, <-done)
}
