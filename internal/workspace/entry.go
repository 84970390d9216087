// Package workspace scans the workspace directory and keeps its tree for the
// editor. The scan runs on the side owning the disk and is requested over ipc.
package workspace

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a file or a directory of the workspace tree.
type Entry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Dir      bool      `json:"dir"`
	Size     int64     `json:"size,omitempty"`
	ModTime  time.Time `json:"modTime"`
	Children []*Entry  `json:"children,omitempty"`
}

// Find returns the entry at path within e, nil if there is none.
func (e *Entry) Find(path string) *Entry {
	if e == nil {
		return nil
	}
	if e.Path == path {
		return e
	}
	for _, child := range e.Children {
		if found := child.Find(path); found != nil {
			return found
		}
	}
	return nil
}

// Directories returns copies of the sub-directories of e, recursively
// filtered to directories only.
func (e *Entry) Directories() []*Entry {
	var out []*Entry
	for _, child := range e.Children {
		if !child.Dir {
			continue
		}
		dir := *child
		dir.Children = child.Directories()
		out = append(out, &dir)
	}
	return out
}

// Walk calls fn for e and every entry below it, depth first.
func (e *Entry) Walk(fn func(*Entry)) {
	fn(e)
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// decodeEntry accepts the entry as sent in-process or as decoded JSON.
func decodeEntry(v any) (*Entry, error) {
	switch e := v.(type) {
	case *Entry:
		if e == nil {
			return nil, fmt.Errorf("%w: empty scan result", ErrInvalidReply)
		}
		return e, nil
	case Entry:
		return &e, nil
	case nil:
		return nil, fmt.Errorf("%w: empty scan result", ErrInvalidReply)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReply, err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReply, err)
	}
	return &e, nil
}
