// Package component implements the typed, observable attribute model every
// editable entity attribute is built from.
//
// A component is either a leaf holding one validated scalar (Number, String,
// File, Bool) or a composite owning a fixed schema of named child components
// (Color, Point, Transform, Sprite). Every component is observable: leaves
// emit "change" (new, previous) when their value changes and composites
// re-emit the changes of their children as "change:<child>" and as a generic
// "change" (child, new, previous), at any depth.
//
// A Registry maps string tags to factories so trees can be created generically
// and reconstructed from their serialized shape:
//
//	{ "tag": "color", "name": "tint", "value": {
//	    "alpha": { "tag": "number", "name": "alpha", "value": 1 },
//	    "hex":   { "tag": "string", "name": "hex",   "value": "ffffff" } } }
//
// Components are meant to be driven from a single goroutine; only the
// listener bookkeeping of the embedded emitter is synchronized.
package component

import (
	"github.com/zeusync/yame/internal/core/events/observable"
)

// Event names emitted by components.
const (
	EventChange  = "change"
	EventName    = "name"
	EventReplace = "replace"
)

// ChangeEvent returns the namespaced change event of a composite child.
func ChangeEvent(child string) string {
	return EventChange + ":" + child
}

// ReplaceEvent returns the namespaced event emitted when a composite child is replaced.
func ReplaceEvent(child string) string {
	return EventReplace + ":" + child
}

// Component is the contract shared by leaf and composite components.
type Component interface {
	observable.Observable

	// Type returns the tag of the concrete type.
	Type() string
	// Name returns the identifier of the component inside its owner.
	Name() string
	// SetName renames the component and emits EventName (new, previous).
	// The child of a composite is named after its slot and keeps that name.
	SetName(name string)
	// Value returns the scalar of a leaf, or a copy of the child mapping of a composite.
	Value() any
	// Copy returns a deep, independent clone without any listeners.
	Copy() Component
}

// Leaf is a component holding a single validated scalar.
type Leaf interface {
	Component
	// SetValue coerces and validates value before storing it.
	SetValue(value any) error
}

// Field describes one slot of a composite schema.
type Field struct {
	Name string
	Tag  string
}

// Parent is a component owning a fixed schema of named children.
type Parent interface {
	Component
	Fields() []Field
	Child(name string) Component
	Children() []Component
	ReplaceChild(name string, child Component) error
}

// base carries the state common to all components.
type base struct {
	observable.Emitter

	tag   string
	name  string
	owner *Composite
}

func (b *base) Type() string { return b.tag }

func (b *base) Name() string { return b.name }

func (b *base) SetName(name string) {
	if name == b.name || b.owner != nil {
		return
	}
	prev := b.name
	b.name = name
	b.Trigger(EventName, name, prev)
}

func (b *base) ownerOf() *Composite { return b.owner }

func (b *base) setOwner(c *Composite) { b.owner = c }

// owned is implemented by every component of this package.
type owned interface {
	ownerOf() *Composite
	setOwner(c *Composite)
}

// ruleCarrier lets the occupant of a composite slot hand its validation rules
// over to a replacement of the same type.
type ruleCarrier interface {
	checkCarry(next Component) error
	carry(next Component)
}
