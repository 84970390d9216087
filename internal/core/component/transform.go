package component

// TransformTag is the registry tag of Transform.
const TransformTag = "transform"

// Transform places an entity: position, scale (1, 1 by default) and rotation
// in degrees.
type Transform struct {
	*Composite
}

func NewTransform(name string) *Transform {
	rotation, err := NewNumber("rotation", 0)
	if err != nil {
		panic(err)
	}
	return &Transform{Composite: mustComposite(TransformTag, name,
		mustPoint("position", 0, 0),
		mustPoint("scale", 1, 1),
		rotation,
	)}
}

func (t *Transform) Position() *Point { return t.Child("position").(*Point) }

func (t *Transform) Scale() *Point { return t.Child("scale").(*Point) }

func (t *Transform) Rotation() *Number { return t.Child("rotation").(*Number) }

func (t *Transform) Copy() Component { return &Transform{Composite: t.clone()} }

func TransformFactory(name string, initial any) (Component, error) {
	t := NewTransform(name)
	if err := t.assign(initial); err != nil {
		return nil, err
	}
	return t, nil
}
