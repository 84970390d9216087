package component

// StringTag is the registry tag of String.
const StringTag = "string"

// String is a leaf holding text.
type String struct {
	leaf[string]
}

// NewString returns a String holding value, checked against rules.
func NewString(name, value string, rules ...Rule[string]) (*String, error) {
	s := &String{}
	if err := s.init(StringTag, name, value, coerceString, rules); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *String) Copy() Component {
	c := &String{}
	s.cloneInto(&c.leaf)
	return c
}

// StringFactory builds a String from a string initial value, "" when nil.
func StringFactory(name string, initial any) (Component, error) {
	var value string
	if initial != nil {
		v, ok := coerceString(initial)
		if !ok {
			return nil, &ValidationError{Tag: StringTag, Name: name, Value: initial, Reason: "not a string"}
		}
		value = v
	}
	s, err := NewString(name, value)
	if err != nil {
		return nil, err
	}
	return s, nil
}
