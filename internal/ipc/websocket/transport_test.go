package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/yame/internal/ipc"
)

func startServer(t *testing.T, router *ipc.Router) (*Server, string) {
	t.Helper()
	srv := NewServer(router, DefaultConfig(), nil)
	hs := httptest.NewServer(srv)
	t.Cleanup(func() {
		_ = srv.Close()
		hs.Close()
	})
	return srv, "ws" + strings.TrimPrefix(hs.URL, "http")
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := Dial(ctx, url, DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTransport_RequestRoundTrip(t *testing.T) {
	router := ipc.NewRouter()
	router.Handle("echo", func(_ context.Context, args ...any) (any, error) {
		return map[string]any{"got": args}, nil
	})
	router.Handle("boom", func(_ context.Context, _ ...any) (any, error) {
		return nil, errors.New("exploded")
	})
	_, url := startServer(t, router)
	c := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := ipc.Request(ctx, c, "echo", "a", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"got": []any{"a", json.Number("1")}}, got[0])

	_, err = ipc.Request(ctx, c, "boom")
	var remote *ipc.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "exploded", remote.Message)

	assert.Empty(t, c.Events())
}

func TestTransport_ConcurrentRequests(t *testing.T) {
	router := ipc.NewRouter()
	router.Handle("slow", func(ctx context.Context, args ...any) (any, error) {
		time.Sleep(10 * time.Millisecond)
		return args[0], nil
	})
	_, url := startServer(t, router)
	c := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func(n int) {
			got, err := ipc.Request(ctx, c, "slow", strings.Repeat("x", n+1))
			if err != nil {
				results <- err.Error()
				return
			}
			results <- got[0].(string)
		}(i)
	}
	seen := map[int]bool{}
	for i := 0; i < 8; i++ {
		seen[len(<-results)] = true
	}
	assert.Len(t, seen, 8, "each request gets its own reply")
}

func TestTransport_ServerClose(t *testing.T) {
	srv, url := startServer(t, ipc.NewRouter())
	c := dial(t, url)

	closed := make(chan struct{})
	c.Once(EventClose, func(args ...any) { close(closed) })
	require.NoError(t, srv.Close())

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client read loop still running")
	}
	select {
	case <-closed:
	default:
		t.Fatal("client not notified of close")
	}
	assert.ErrorIs(t, c.Send("x"), ipc.ErrClosed)
}
