package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/yame/internal/core/observability/log"
)

// Scanner reads a directory tree into Entries, reading sub-directories
// concurrently.
type Scanner struct {
	concurrency int
	skipHidden  bool
	logger      log.Log
}

type ScannerOption func(*Scanner)

// WithConcurrency bounds the number of directories read at once.
func WithConcurrency(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSkipHidden leaves out entries whose name starts with a dot.
func WithSkipHidden(skip bool) ScannerOption {
	return func(s *Scanner) { s.skipHidden = skip }
}

func WithScannerLogger(logger log.Log) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{concurrency: 8, logger: log.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan reads the whole tree below root.
func (s *Scanner) Scan(ctx context.Context, root string) (*Entry, error) {
	return s.scan(ctx, root, -1)
}

// ScanShallow reads the direct members of root only.
func (s *Scanner) ScanShallow(ctx context.Context, root string) (*Entry, error) {
	return s.scan(ctx, root, 1)
}

func (s *Scanner) scan(ctx context.Context, root string, depth int) (*Entry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	start := time.Now()
	top := &Entry{Name: info.Name(), Path: abs, Dir: true, ModTime: info.ModTime()}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	var visit func(e *Entry, depth int) error
	visit = func(e *Entry, depth int) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		if err := s.read(e); err != nil {
			return err
		}
		if depth == 1 {
			return nil
		}
		for _, child := range e.Children {
			if !child.Dir {
				continue
			}
			task := func() error { return visit(child, depth-1) }
			// a saturated group must not block a worker waiting on itself
			if !g.TryGo(task) {
				if err := task(); err != nil {
					return err
				}
			}
		}
		return nil
	}

	g.Go(func() error { return visit(top, depth) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", abs, err)
	}
	entries := 0
	top.Walk(func(*Entry) { entries++ })
	s.logger.Debug("Workspace scanned",
		log.String("root", abs),
		log.Bool("recursive", depth != 1),
		log.Int("entries", entries),
		log.Duration("took", time.Since(start)))
	return top, nil
}

func (s *Scanner) read(e *Entry) error {
	entries, err := os.ReadDir(e.Path)
	if err != nil {
		return err
	}
	e.Children = make([]*Entry, 0, len(entries))
	for _, de := range entries {
		if s.skipHidden && strings.HasPrefix(de.Name(), ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			if os.IsNotExist(err) {
				// removed while scanning
				continue
			}
			return err
		}
		child := &Entry{
			Name:    de.Name(),
			Path:    filepath.Join(e.Path, de.Name()),
			Dir:     de.IsDir() && de.Type()&fs.ModeSymlink == 0,
			ModTime: info.ModTime(),
		}
		if !child.Dir {
			child.Size = info.Size()
		}
		e.Children = append(e.Children, child)
	}
	return nil
}
