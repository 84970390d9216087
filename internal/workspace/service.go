package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zeusync/yame/internal/core/events/observable"
	"github.com/zeusync/yame/internal/core/observability/log"
	"github.com/zeusync/yame/internal/ipc"
)

// ScanChannel is the ipc channel serving directory scans.
const ScanChannel = "directory:scan"

// State of the workspace service.
type State string

const (
	StateInit  State = "init"
	StateReady State = "ready"
	StateFail  State = "fail"
)

// Events triggered by the service: "init" when a scan starts, "ready" (root)
// when it succeeded, "fail" (err) when it failed.
const (
	EventInit  = "init"
	EventReady = "ready"
	EventFail  = "fail"
)

var (
	ErrNotReady     = errors.New("workspace not initialized yet")
	ErrNotDirectory = errors.New("not a directory")
	ErrInvalidReply = errors.New("invalid scan reply")
)

// Service holds the tree of the workspace directory, requested over ipc.
type Service struct {
	observable.Emitter

	conn    ipc.Conn
	timeout time.Duration
	logger  log.Log
	flight  singleflight.Group

	mu    sync.RWMutex
	state State
	root  *Entry
	dirs  []*Entry
	err   error
}

type ServiceOption func(*Service)

// WithTimeout bounds every scan request.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(logger log.Log) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(conn ipc.Conn, opts ...ServiceOption) *Service {
	s := &Service{
		conn:    conn,
		timeout: 30 * time.Second,
		logger:  log.Nop(),
		state:   StateInit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init scans rootDir as the workspace. Once ready, further calls return the
// loaded tree without scanning again; after a failure Init may be retried.
// Concurrent calls share one scan.
func (s *Service) Init(ctx context.Context, rootDir string) (*Entry, error) {
	s.mu.RLock()
	if s.state == StateReady {
		root := s.root
		s.mu.RUnlock()
		return root, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.flight.Do(rootDir, func() (any, error) {
		return s.scan(ctx, rootDir)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

func (s *Service) scan(ctx context.Context, rootDir string) (*Entry, error) {
	s.mu.Lock()
	s.state = StateInit
	s.err = nil
	s.mu.Unlock()
	s.Trigger(EventInit)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	root, err := s.request(ctx, rootDir)
	if err != nil {
		s.mu.Lock()
		s.state = StateFail
		s.err = err
		s.mu.Unlock()
		s.logger.Warn("Workspace scan failed", log.String("root", rootDir), log.Error(err))
		s.Trigger(EventFail, err)
		return nil, err
	}

	s.mu.Lock()
	s.state = StateReady
	s.root = root
	s.dirs = root.Directories()
	s.mu.Unlock()
	s.logger.Info("Workspace ready", log.String("root", root.Path))
	s.Trigger(EventReady, root)
	return root, nil
}

func (s *Service) request(ctx context.Context, rootDir string) (*Entry, error) {
	reply, err := ipc.Request(ctx, s.conn, ScanChannel, rootDir, true)
	if err != nil {
		return nil, err
	}
	if len(reply) == 0 {
		return nil, ErrInvalidReply
	}
	return decodeEntry(reply[0])
}

// State returns the current scan state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the error of the last failed scan.
func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Directory returns the workspace root, nil before the first successful scan.
func (s *Service) Directory() *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Directories returns the directory-only view of the tree.
func (s *Service) Directories() ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.root == nil {
		return nil, ErrNotReady
	}
	return s.dirs, nil
}

// Find returns the entry at path, nil when unknown.
func (s *Service) Find(path string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.Find(path)
}

// Files returns the members of the directory at path, nil when path is not a
// known directory.
func (s *Service) Files(path string) []*Entry {
	e := s.Find(path)
	if e == nil || !e.Dir {
		return nil
	}
	return e.Children
}

// RegisterScanHandler serves ScanChannel on router with scanner. The request
// arguments are the root directory and an optional recursive flag, true by default.
func RegisterScanHandler(router *ipc.Router, scanner *Scanner) {
	router.Handle(ScanChannel, func(ctx context.Context, args ...any) (any, error) {
		if len(args) == 0 {
			return nil, errors.New("missing root directory")
		}
		root, ok := args[0].(string)
		if !ok || root == "" {
			return nil, errors.New("root directory must be a non-empty string")
		}
		if len(args) > 1 {
			if recursive, ok := args[1].(bool); ok && !recursive {
				return scanner.ScanShallow(ctx, root)
			}
		}
		return scanner.Scan(ctx, root)
	})
}
