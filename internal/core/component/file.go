package component

import (
	"errors"
	"path"
	"strings"
)

// FileTag is the registry tag of File.
const FileTag = "file"

var (
	errEmptyPath = errors.New("path is empty")
	errNULInPath = errors.New("path contains a NUL byte")
)

// File is a leaf holding a slash separated resource path, relative to the
// workspace root. The empty path means "unset" and is only accepted as the
// initial value.
type File struct {
	leaf[string]
}

// NewFile returns a File holding p, cleaned unless it is empty.
func NewFile(name, p string) (*File, error) {
	f := &File{}
	if err := f.init(FileTag, name, p, coerceString, []Rule[string]{noNUL}); err != nil {
		return nil, err
	}
	f.normalize = cleanPath
	if p != "" {
		cleaned, err := cleanPath(p)
		if err != nil {
			return nil, f.reject(p, err)
		}
		f.value = cleaned
	}
	return f, nil
}

func (f *File) Copy() Component {
	c := &File{}
	f.cloneInto(&c.leaf)
	return c
}

// IsSet reports whether a path was assigned.
func (f *File) IsSet() bool { return f.Get() != "" }

// Ext returns the extension of the path, including the dot.
func (f *File) Ext() string { return path.Ext(f.Get()) }

func FileFactory(name string, initial any) (Component, error) {
	var p string
	if initial != nil {
		v, ok := coerceString(initial)
		if !ok {
			return nil, &ValidationError{Tag: FileTag, Name: name, Value: initial, Reason: "not a path"}
		}
		p = v
	}
	f, err := NewFile(name, p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func noNUL(p string) error {
	if strings.IndexByte(p, 0) >= 0 {
		return errNULInPath
	}
	return nil
}

func cleanPath(p string) (string, error) {
	if p == "" {
		return "", errEmptyPath
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/")), nil
}
