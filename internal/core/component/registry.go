package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"

	"github.com/zeusync/yame/internal/core/observability/log"
)

// Factory builds a component named name. initial is nil for the type default,
// a scalar for leaves, or a map[string]any of slot values for composites.
//
// Define tells factories apart by their code pointer only. Closures made from
// one function literal are the same factory whatever state they capture.
type Factory func(name string, initial any) (Component, error)

// Registry maps tags to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	logger    log.Log
}

type RegistryOption func(*Registry)

// WithLogger sets the logger used to report definitions.
func WithLogger(logger log.Log) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		logger:    log.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define binds tag to factory. Defining the same factory again is a no-op;
// a different factory for a known tag fails with *DuplicateTagError.
//
// Factories are compared by code pointer, so closures built from the same
// function literal count as the same factory.
func (r *Registry) Define(tag string, factory Factory) error {
	if tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidDefinition)
	}
	if factory == nil {
		return fmt.Errorf("%w: nil factory for %q", ErrInvalidDefinition, tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.factories[tag]; ok {
		if sameFactory(existing, factory) {
			return nil
		}
		r.logger.Warn("Conflicting component definition", log.Tag(tag))
		return &DuplicateTagError{Tag: tag}
	}
	r.factories[tag] = factory
	r.logger.Debug("Component type defined", log.Tag(tag))
	return nil
}

func sameFactory(a, b Factory) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// Has reports whether tag is defined.
func (r *Registry) Has(tag string) bool {
	return r.factory(tag) != nil
}

// Tags returns the defined tags, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	r.mu.RUnlock()
	sort.Strings(tags)
	return tags
}

func (r *Registry) factory(tag string) Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[tag]
}

// Create builds a new component of type tag.
func (r *Registry) Create(tag, name string, initial any) (Component, error) {
	f := r.factory(tag)
	if f == nil {
		return nil, &UnknownTagError{Tag: tag}
	}
	c, err := f(name, initial)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Type() != tag {
		return nil, fmt.Errorf("%w: factory for %q built %s", ErrInvalidDefinition, tag, describe(c))
	}
	return c, nil
}

func describe(c Component) string {
	if c == nil {
		return "nothing"
	}
	return fmt.Sprintf("%q", c.Type())
}

// Serialize captures c, failing with *UnknownTagError when any node of the
// tree has a tag this registry cannot rebuild.
func (r *Registry) Serialize(c Component) (Data, error) {
	if err := r.checkTags(c); err != nil {
		return Data{}, err
	}
	return Snapshot(c), nil
}

func (r *Registry) checkTags(c Component) error {
	if !r.Has(c.Type()) {
		return &UnknownTagError{Tag: c.Type()}
	}
	if p, ok := c.(Parent); ok {
		for _, child := range p.Children() {
			if err := r.checkTags(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal serializes c to JSON.
func (r *Registry) Marshal(c Component) ([]byte, error) {
	d, err := r.Serialize(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// Deserialize rebuilds a component tree from its JSON serialized shape.
func (r *Registry) Deserialize(raw []byte) (Component, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, malformed("", "invalid JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("", "trailing data", err)
	}
	return r.Decode(v)
}

// Decode rebuilds a component tree from a generic decoded document.
func (r *Registry) Decode(v any) (Component, error) {
	d, err := ParseData(v)
	if err != nil {
		return nil, err
	}
	return r.build(d, "")
}

// DeserializeData rebuilds a component tree from d. Either the whole tree is
// built or an error is returned. Every error wraps ErrMalformedData, the
// underlying *UnknownTagError or *ValidationError is available via errors.As.
func (r *Registry) DeserializeData(d Data) (Component, error) {
	d, err := normalizeData(d, "")
	if err != nil {
		return nil, err
	}
	return r.build(d, "")
}

func (r *Registry) build(d Data, path string) (Component, error) {
	f := r.factory(d.Tag)
	if f == nil {
		return nil, malformed(path, "unresolved tag", &UnknownTagError{Tag: d.Tag})
	}

	children, isComposite := d.Value.(map[string]Data)
	if !isComposite {
		c, err := f(d.Name, d.Value)
		if err != nil {
			return nil, malformed(path, "invalid value", err)
		}
		if _, isParent := c.(Parent); isParent {
			return nil, malformed(path, fmt.Sprintf("%q expects child data, got a scalar", d.Tag), nil)
		}
		if c.Type() != d.Tag {
			return nil, malformed(path, fmt.Sprintf("factory for %q built %q", d.Tag, c.Type()), nil)
		}
		return c, nil
	}

	built := make(map[string]Component, len(children))
	for _, k := range sortedKeys(children) {
		cd := children[k]
		switch cd.Name {
		case "":
			cd.Name = k
		case k:
		default:
			return nil, malformed(joinPath(path, k), fmt.Sprintf("child name %q does not match its slot", cd.Name), nil)
		}
		child, err := r.build(cd, joinPath(path, k))
		if err != nil {
			return nil, err
		}
		built[k] = child
	}

	c, err := f(d.Name, nil)
	if err != nil {
		return nil, malformed(path, "factory failed", err)
	}
	p, ok := c.(Parent)
	if !ok || c.Type() != d.Tag {
		return nil, malformed(path, fmt.Sprintf("%q does not build a composite", d.Tag), nil)
	}

	fields := p.Fields()
	for _, fl := range fields {
		if _, ok := built[fl.Name]; !ok {
			return nil, malformed(joinPath(path, fl.Name), "missing child", nil)
		}
	}
	if len(built) != len(fields) {
		for _, k := range sortedKeys(built) {
			if p.Child(k) == nil {
				return nil, malformed(joinPath(path, k), fmt.Sprintf("%q has no such child", d.Tag), nil)
			}
		}
	}
	for _, fl := range fields {
		if err := p.ReplaceChild(fl.Name, built[fl.Name]); err != nil {
			return nil, malformed(joinPath(path, fl.Name), "incompatible child", err)
		}
	}
	return c, nil
}
