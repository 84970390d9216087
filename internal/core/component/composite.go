package component

import (
	"fmt"
	"reflect"
	"strings"
)

var _ Parent = (*Composite)(nil)

// Composite owns a fixed, ordered schema of named children and re-emits their
// changes. Concrete composites embed it by pointer and add typed getters.
//
// For a leaf child "x" reporting (new, prev) a composite emits
//
//	change:x   (new, prev)
//	change     ("x", new, prev)
//
// and for a composite child "p" reporting change ("x", new, prev)
//
//	change:p   ("x", new, prev)
//	change:p.x (new, prev)
//	change     ("p.x", new, prev)
type Composite struct {
	base

	fields   []Field
	children map[string]Component
}

// NewComposite returns a composite whose schema is made of children, keyed by
// their names. Names must be unique and non-empty, children must not belong to
// another composite.
func NewComposite(tag, name string, children ...Component) (*Composite, error) {
	c := &Composite{
		fields:   make([]Field, 0, len(children)),
		children: make(map[string]Component, len(children)),
	}
	c.tag = tag
	c.name = name

	for _, child := range children {
		if child == nil {
			return nil, fmt.Errorf("%w: nil child in %s", ErrSchemaViolation, tag)
		}
		key := child.Name()
		if key == "" || strings.Contains(key, ".") {
			return nil, fmt.Errorf("%w: invalid child name %q in %s", ErrSchemaViolation, key, tag)
		}
		if _, dup := c.children[key]; dup {
			return nil, fmt.Errorf("%w: duplicate child %q in %s", ErrSchemaViolation, key, tag)
		}
		if o, ok := child.(owned); ok && o.ownerOf() != nil {
			return nil, fmt.Errorf("%w: child %q already belongs to a composite", ErrSchemaViolation, key)
		}
		c.fields = append(c.fields, Field{Name: key, Tag: child.Type()})
		c.children[key] = child
	}
	for _, f := range c.fields {
		c.attach(f.Name, c.children[f.Name])
	}
	return c, nil
}

func mustComposite(tag, name string, children ...Component) *Composite {
	c, err := NewComposite(tag, name, children...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Composite) composite() *Composite { return c }

// Fields returns the schema in declaration order.
func (c *Composite) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Child returns the child in slot name, nil if the schema has no such slot.
func (c *Composite) Child(name string) Component {
	return c.children[name]
}

// Children returns the children in schema order.
func (c *Composite) Children() []Component {
	out := make([]Component, len(c.fields))
	for i, f := range c.fields {
		out[i] = c.children[f.Name]
	}
	return out
}

// Value returns a copy of the slot to child mapping.
func (c *Composite) Value() any {
	out := make(map[string]Component, len(c.children))
	for k, v := range c.children {
		out[k] = v
	}
	return out
}

// Lookup resolves a dotted path ("transform.position.x") below c.
func (c *Composite) Lookup(path string) Component {
	var cur Component = c
	for _, part := range strings.Split(path, ".") {
		p, ok := cur.(Parent)
		if !ok {
			return nil
		}
		cur = p.Child(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func (c *Composite) Copy() Component {
	return c.clone()
}

// ReplaceChild swaps the child in slot name for next, which must have the same
// concrete type and satisfy the constraints of the slot. The slot keeps its
// constraints, listeners of the previous child are left untouched apart from
// the forwarding of c. next is renamed after the slot. Emits
// replace:<name> (next, previous).
func (c *Composite) ReplaceChild(name string, next Component) error {
	prev, ok := c.children[name]
	if !ok {
		return fmt.Errorf("%w: %s has no child %q", ErrSchemaViolation, c.tag, name)
	}
	if next == nil {
		return fmt.Errorf("%w: nil child for %s.%s", ErrSchemaViolation, c.tag, name)
	}
	if next == prev {
		return nil
	}
	if reflect.TypeOf(next) != reflect.TypeOf(prev) {
		return fmt.Errorf("%w: %s.%s expects %s, got %s", ErrSchemaViolation, c.tag, name, prev.Type(), next.Type())
	}
	if o, ok := next.(owned); ok && o.ownerOf() != nil {
		return fmt.Errorf("%w: child for %s.%s already belongs to a composite", ErrSchemaViolation, c.tag, name)
	}
	if nc, ok := next.(interface{ composite() *Composite }); ok {
		for o := c; o != nil; o = o.owner {
			if o == nc.composite() {
				return fmt.Errorf("%w: %s.%s would contain itself", ErrSchemaViolation, c.tag, name)
			}
		}
	}
	if rc, ok := prev.(ruleCarrier); ok {
		if err := rc.checkCarry(next); err != nil {
			return err
		}
		rc.carry(next)
	}

	c.detach(prev)
	next.SetName(name)
	c.children[name] = next
	c.attach(name, next)
	c.Trigger(ReplaceEvent(name), next, prev)
	return nil
}

func (c *Composite) attach(key string, child Component) {
	if o, ok := child.(owned); ok {
		o.setOwner(c)
	}
	_, nested := child.(Parent)
	child.On(EventChange, func(args ...any) {
		c.forward(key, nested, args)
	}, c)
}

func (c *Composite) detach(child Component) {
	child.Off("", nil, c)
	if o, ok := child.(owned); ok {
		o.setOwner(nil)
	}
}

func (c *Composite) forward(key string, nested bool, args []any) {
	if nested && len(args) == 3 {
		path, _ := args[0].(string)
		full := key + "." + path
		c.Trigger(ChangeEvent(key), args...)
		c.Trigger(ChangeEvent(full), args[1], args[2])
		c.Trigger(EventChange, full, args[1], args[2])
		return
	}
	c.Trigger(ChangeEvent(key), args...)
	c.Trigger(EventChange, append([]any{key}, args...)...)
}

func (c *Composite) clone() *Composite {
	out := &Composite{
		fields:   c.Fields(),
		children: make(map[string]Component, len(c.children)),
	}
	out.tag = c.tag
	out.name = c.name
	for _, f := range c.fields {
		child := c.children[f.Name].Copy()
		out.children[f.Name] = child
		out.attach(f.Name, child)
	}
	return out
}

// assign applies a partial mapping of slot names to initial values, the way
// factories receive them. Nested maps are applied to composite children.
func (c *Composite) assign(initial any) error {
	if initial == nil {
		return nil
	}
	values, ok := initial.(map[string]any)
	if !ok {
		return &ValidationError{Tag: c.tag, Name: c.name, Value: initial, Reason: fmt.Sprintf("expected a mapping, got %T", initial)}
	}
	for _, k := range sortedKeys(values) {
		child, ok := c.children[k]
		if !ok {
			return &ValidationError{Tag: c.tag, Name: c.name, Value: initial, Reason: fmt.Sprintf("unknown child %q", k)}
		}
		switch ch := child.(type) {
		case Leaf:
			if err := ch.SetValue(values[k]); err != nil {
				return err
			}
		case interface{ assign(any) error }:
			if err := ch.assign(values[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Composite) checkCarry(next Component) error {
	nc, ok := next.(interface{ composite() *Composite })
	if !ok {
		return fmt.Errorf("%w: %s cannot replace %s", ErrSchemaViolation, next.Type(), c.tag)
	}
	n := nc.composite()
	for _, f := range c.fields {
		rc, ok := c.children[f.Name].(ruleCarrier)
		if !ok {
			continue
		}
		nextChild := n.children[f.Name]
		if nextChild == nil {
			return fmt.Errorf("%w: %s is missing child %q", ErrSchemaViolation, n.tag, f.Name)
		}
		if err := rc.checkCarry(nextChild); err != nil {
			return err
		}
	}
	return nil
}

func (c *Composite) carry(next Component) {
	n := next.(interface{ composite() *Composite }).composite()
	for _, f := range c.fields {
		if rc, ok := c.children[f.Name].(ruleCarrier); ok {
			rc.carry(n.children[f.Name])
		}
	}
}
