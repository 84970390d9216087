package workspace

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/yame/internal/ipc"
	"github.com/zeusync/yame/internal/ipc/websocket"
)

// makeTree creates
//
//	root/
//	  .git/HEAD
//	  scenes/level-1.json
//	  sprites/hero.png
//	  sprites/ui/button.png
//	  readme.md
func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		".git/HEAD":             "ref",
		"scenes/level-1.json":   "{}",
		"sprites/hero.png":      "png",
		"sprites/ui/button.png": "png!",
		"readme.md":             "# game",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func names(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestScanner_Scan(t *testing.T) {
	root := makeTree(t)

	tests := []struct {
		name  string
		opts  []ScannerOption
		want  []string
		total int
	}{
		{"all", nil, []string{".git", "readme.md", "scenes", "sprites"}, 10},
		{"skip hidden", []ScannerOption{WithSkipHidden(true)}, []string{"readme.md", "scenes", "sprites"}, 8},
		{"sequential", []ScannerOption{WithConcurrency(1), WithSkipHidden(true)}, []string{"readme.md", "scenes", "sprites"}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewScanner(tt.opts...).Scan(context.Background(), root)
			require.NoError(t, err)
			assert.True(t, e.Dir)
			assert.Equal(t, tt.want, names(e.Children))

			total := 0
			e.Walk(func(*Entry) { total++ })
			assert.Equal(t, tt.total, total)

			button := e.Find(filepath.Join(root, "sprites", "ui", "button.png"))
			require.NotNil(t, button)
			assert.False(t, button.Dir)
			assert.Equal(t, int64(4), button.Size)
		})
	}
}

func TestScanner_Shallow(t *testing.T) {
	root := makeTree(t)
	e, err := NewScanner(WithSkipHidden(true)).ScanShallow(context.Background(), root)
	require.NoError(t, err)

	sprites := e.Find(filepath.Join(root, "sprites"))
	require.NotNil(t, sprites)
	assert.True(t, sprites.Dir)
	assert.Empty(t, sprites.Children)
}

func TestScanner_Errors(t *testing.T) {
	root := makeTree(t)
	s := NewScanner()

	_, err := s.Scan(context.Background(), filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = s.Scan(context.Background(), filepath.Join(root, "readme.md"))
	assert.ErrorIs(t, err, ErrNotDirectory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEntry_Directories(t *testing.T) {
	root := makeTree(t)
	e, err := NewScanner(WithSkipHidden(true)).Scan(context.Background(), root)
	require.NoError(t, err)

	dirs := e.Directories()
	assert.Equal(t, []string{"scenes", "sprites"}, names(dirs))
	assert.Empty(t, dirs[0].Children)
	assert.Equal(t, []string{"ui"}, names(dirs[1].Children))
	assert.Len(t, e.Find(filepath.Join(root, "sprites")).Children, 2, "tree is not modified")
}

func newLocalService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	router := ipc.NewRouter()
	RegisterScanHandler(router, NewScanner(WithSkipHidden(true)))
	conn := ipc.NewLocal(router)
	t.Cleanup(func() { _ = conn.Close() })
	return NewService(conn, opts...)
}

func TestService_Init(t *testing.T) {
	root := makeTree(t)
	s := newLocalService(t)

	var events []string
	s.On(EventInit+" "+EventReady+" "+EventFail, func(args ...any) {
		switch len(args) {
		case 0:
			events = append(events, EventInit)
		default:
			if _, ok := args[0].(*Entry); ok {
				events = append(events, EventReady)
			} else {
				events = append(events, EventFail)
			}
		}
	})

	assert.Equal(t, StateInit, s.State())
	_, err := s.Directories()
	assert.ErrorIs(t, err, ErrNotReady)

	dir, err := s.Init(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
	assert.NoError(t, s.Err())
	assert.Same(t, dir, s.Directory())
	assert.Equal(t, []string{EventInit, EventReady}, events)

	dirs, err := s.Directories()
	require.NoError(t, err)
	assert.Equal(t, []string{"scenes", "sprites"}, names(dirs))
	assert.Equal(t, []string{"hero.png", "ui"}, names(s.Files(filepath.Join(root, "sprites"))))
	assert.Nil(t, s.Files(filepath.Join(root, "readme.md")))
	assert.Nil(t, s.Find(filepath.Join(root, "nope")))

	again, err := s.Init(context.Background(), root)
	require.NoError(t, err)
	assert.Same(t, dir, again, "ready workspace is not scanned twice")
	assert.Len(t, events, 2)
}

func TestService_InitFailure(t *testing.T) {
	root := makeTree(t)
	s := newLocalService(t)

	var failed error
	s.On(EventFail, func(args ...any) { failed = args[0].(error) })

	_, err := s.Init(context.Background(), filepath.Join(root, "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ipc.ErrRequestFailed)
	assert.Equal(t, StateFail, s.State())
	assert.Equal(t, err, s.Err())
	assert.Equal(t, err, failed)

	_, err = s.Init(context.Background(), root)
	require.NoError(t, err, "a failed workspace can be retried")
	assert.Equal(t, StateReady, s.State())
	assert.NoError(t, s.Err())
}

func TestService_InitTimeout(t *testing.T) {
	router := ipc.NewRouter()
	router.Handle(ScanChannel, func(ctx context.Context, _ ...any) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	conn := ipc.NewLocal(router)
	t.Cleanup(func() { _ = conn.Close() })
	s := NewService(conn, WithTimeout(20*time.Millisecond))

	_, err := s.Init(context.Background(), "/anywhere")
	assert.ErrorIs(t, err, ipc.ErrRequestTimeout)
	assert.Equal(t, StateFail, s.State())
	assert.Empty(t, conn.Events(), "no reply listener left behind")
}

func TestService_OverWebsocket(t *testing.T) {
	root := makeTree(t)
	router := ipc.NewRouter()
	RegisterScanHandler(router, NewScanner(WithSkipHidden(true)))
	srv := websocket.NewServer(router, websocket.DefaultConfig(), nil)
	hs := httptest.NewServer(srv)
	defer hs.Close()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(hs.URL, "http"), websocket.DefaultConfig(), nil)
	require.NoError(t, err)
	defer client.Close()

	s := NewService(client)
	dir, err := s.Init(ctx, root)
	require.NoError(t, err)

	local, err := NewScanner(WithSkipHidden(true)).Scan(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, local.Path, dir.Path)
	assert.Equal(t, names(local.Children), names(dir.Children))
	button := s.Find(filepath.Join(root, "sprites", "ui", "button.png"))
	require.NotNil(t, button)
	assert.Equal(t, int64(4), button.Size)
}
