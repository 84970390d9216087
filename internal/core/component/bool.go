package component

// BoolTag is the registry tag of Bool.
const BoolTag = "bool"

// Bool is a leaf holding a flag.
type Bool struct {
	leaf[bool]
}

func NewBool(name string, value bool) *Bool {
	b := &Bool{}
	// no rules, init cannot fail
	_ = b.init(BoolTag, name, value, coerceBool, nil)
	return b
}

func (b *Bool) Copy() Component {
	c := &Bool{}
	b.cloneInto(&c.leaf)
	return c
}

// Toggle flips the flag.
func (b *Bool) Toggle() {
	_ = b.Set(!b.Get())
}

func BoolFactory(name string, initial any) (Component, error) {
	if initial == nil {
		return NewBool(name, false), nil
	}
	v, ok := coerceBool(initial)
	if !ok {
		return nil, &ValidationError{Tag: BoolTag, Name: name, Value: initial, Reason: "not a bool"}
	}
	return NewBool(name, v), nil
}
