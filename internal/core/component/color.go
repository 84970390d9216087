package component

import (
	"regexp"
)

const (
	// ColorTag is the registry tag of Color.
	ColorTag = "color"
	// DefaultHex is the hex code of a new Color.
	DefaultHex = "ffffff"
)

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]{3,8}$`)

// Color is a composite of an opacity in [0, 1] and a hex code without "#".
type Color struct {
	*Composite
}

// NewColor returns an opaque white Color.
func NewColor(name string) *Color {
	alpha, err := NewNumber("alpha", 1, InRange(0, 1))
	if err != nil {
		panic(err)
	}
	hex, err := NewString("hex", DefaultHex, Matches(hexPattern))
	if err != nil {
		panic(err)
	}
	return &Color{Composite: mustComposite(ColorTag, name, alpha, hex)}
}

func (c *Color) Alpha() *Number { return c.Child("alpha").(*Number) }

func (c *Color) Hex() *String { return c.Child("hex").(*String) }

func (c *Color) Copy() Component { return &Color{Composite: c.clone()} }

// ColorFactory builds a Color, applying an optional {"alpha", "hex"} mapping.
func ColorFactory(name string, initial any) (Component, error) {
	c := NewColor(name)
	if err := c.assign(initial); err != nil {
		return nil, err
	}
	return c, nil
}
