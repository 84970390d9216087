// Package scene holds scene documents: ordered, uniquely named root
// components persisted as JSON or YAML and relayed onto an event bus.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeusync/yame/internal/core/component"
	"github.com/zeusync/yame/internal/core/events/bus"
	"github.com/zeusync/yame/internal/core/events/observable"
	"github.com/zeusync/yame/internal/core/observability/log"
)

var (
	ErrDuplicateComponent = errors.New("component name already used in document")
	ErrUnnamedComponent   = errors.New("root component has no name")
)

// Document is a named set of root components. Every event of every root is
// published on the bus, on a topic named after the document, with the
// component name as source.
type Document struct {
	name     string
	registry *component.Registry
	bus      bus.EventBus
	logger   log.Log

	order      []string
	components map[string]component.Component
	keys       map[component.Component]string
	dirty      bool
}

type Option func(*Document)

// WithBus relays component events onto b.
func WithBus(b bus.EventBus) Option {
	return func(d *Document) { d.bus = b }
}

// WithRegistry sets the registry used to serialize the document.
func WithRegistry(r *component.Registry) Option {
	return func(d *Document) {
		if r != nil {
			d.registry = r
		}
	}
}

func WithLogger(logger log.Log) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New returns an empty document using the default registry.
func New(name string, opts ...Option) *Document {
	d := &Document{
		name:       name,
		registry:   component.Default(),
		logger:     log.Nop(),
		components: make(map[string]component.Component),
		keys:       make(map[component.Component]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(log.String("document", name))
	return d
}

func (d *Document) Name() string { return d.name }

// Add appends c to the document. The document follows renames of c; a rename
// to an empty or already used name is reverted.
func (d *Document) Add(c component.Component) error {
	key := c.Name()
	if key == "" {
		return ErrUnnamedComponent
	}
	if _, ok := d.components[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateComponent, key)
	}
	d.components[key] = c
	d.keys[c] = key
	d.order = append(d.order, key)
	c.On(component.EventName, func(args ...any) { d.rename(c, args) }, d)
	c.On(observable.AllEvents, func(args ...any) { d.relay(c, args) }, d)
	d.dirty = true
	return nil
}

// Remove detaches the component registered under name.
func (d *Document) Remove(name string) (component.Component, bool) {
	c, ok := d.components[name]
	if !ok {
		return nil, false
	}
	c.Off("", nil, d)
	delete(d.components, name)
	delete(d.keys, c)
	for i, k := range d.order {
		if k == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.dirty = true
	return c, true
}

func (d *Document) Get(name string) component.Component {
	return d.components[name]
}

// Components returns the roots in insertion order.
func (d *Document) Components() []component.Component {
	out := make([]component.Component, len(d.order))
	for i, k := range d.order {
		out[i] = d.components[k]
	}
	return out
}

func (d *Document) Len() int { return len(d.order) }

// Dirty reports whether the document changed since it was loaded or saved.
func (d *Document) Dirty() bool { return d.dirty }

func (d *Document) rename(c component.Component, args []any) {
	next, _ := args[0].(string)
	prev := d.keys[c]
	if next == prev {
		return
	}
	if _, taken := d.components[next]; taken || next == "" {
		d.logger.Warn("Rename reverted",
			log.Component(prev),
			log.String("name", next),
			log.Error(ErrDuplicateComponent))
		c.SetName(prev)
		return
	}
	delete(d.components, prev)
	d.components[next] = c
	d.keys[c] = next
	for i, k := range d.order {
		if k == prev {
			d.order[i] = next
			break
		}
	}
}

func (d *Document) relay(c component.Component, args []any) {
	source := d.keys[c]
	event, _ := args[0].(string)
	if event == component.EventChange || event == component.EventName || strings.HasPrefix(event, component.EventReplace+":") {
		d.dirty = true
	}
	if d.bus == nil {
		return
	}
	if err := d.bus.PublishToTopic(d.name, bus.NewEvent(event, source, args[1:]...)); err != nil {
		d.logger.Warn("Component event observer failed",
			log.String("event", event),
			log.Component(source),
			log.Error(err),
		)
	}
}
