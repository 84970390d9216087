package component

// PointTag is the registry tag of Point.
const PointTag = "point"

// Point is a composite of two coordinates.
type Point struct {
	*Composite
}

func NewPoint(name string, x, y float64) (*Point, error) {
	nx, err := NewNumber("x", x)
	if err != nil {
		return nil, err
	}
	ny, err := NewNumber("y", y)
	if err != nil {
		return nil, err
	}
	return &Point{Composite: mustComposite(PointTag, name, nx, ny)}, nil
}

func (p *Point) X() *Number { return p.Child("x").(*Number) }

func (p *Point) Y() *Number { return p.Child("y").(*Number) }

// Set assigns both coordinates. Nothing changes when either is rejected.
func (p *Point) Set(x, y float64) error {
	if err := p.X().check(x); err != nil {
		return err
	}
	if err := p.Y().check(y); err != nil {
		return err
	}
	if err := p.X().Set(x); err != nil {
		return err
	}
	return p.Y().Set(y)
}

func (p *Point) Copy() Component { return &Point{Composite: p.clone()} }

func PointFactory(name string, initial any) (Component, error) {
	p, err := NewPoint(name, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := p.assign(initial); err != nil {
		return nil, err
	}
	return p, nil
}

func mustPoint(name string, x, y float64) *Point {
	p, err := NewPoint(name, x, y)
	if err != nil {
		panic(err)
	}
	return p
}
