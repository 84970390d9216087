package component

// NumberTag is the registry tag of Number.
const NumberTag = "number"

// Number is a leaf holding a finite float64.
type Number struct {
	leaf[float64]
}

// NewNumber returns a Number holding value. Every Number rejects NaN and
// infinities; rules adds further constraints such as InRange.
func NewNumber(name string, value float64, rules ...Rule[float64]) (*Number, error) {
	n := &Number{}
	all := append([]Rule[float64]{Finite}, rules...)
	if err := n.init(NumberTag, name, value, coerceFloat, all); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Number) Copy() Component {
	c := &Number{}
	n.cloneInto(&c.leaf)
	return c
}

// NumberFactory builds a Number from any numeric initial value, 0 when nil.
func NumberFactory(name string, initial any) (Component, error) {
	var value float64
	if initial != nil {
		v, ok := coerceFloat(initial)
		if !ok {
			return nil, &ValidationError{Tag: NumberTag, Name: name, Value: initial, Reason: "not a number"}
		}
		value = v
	}
	n, err := NewNumber(name, value)
	if err != nil {
		return nil, err
	}
	return n, nil
}
