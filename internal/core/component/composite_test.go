package component

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/yame/internal/core/events/observable"
)

func TestColor_Defaults(t *testing.T) {
	c := NewColor("tint")

	assert.Equal(t, ColorTag, c.Type())
	assert.Equal(t, 1.0, c.Alpha().Get())
	assert.Equal(t, DefaultHex, c.Hex().Get())
	assert.Equal(t, []Field{{Name: "alpha", Tag: NumberTag}, {Name: "hex", Tag: StringTag}}, c.Fields())
}

func TestColor_ChangeEvents(t *testing.T) {
	c := NewColor("tint")

	var hex [][]any
	var generic [][]any
	c.On(ChangeEvent("hex"), func(args ...any) { hex = append(hex, args) })
	c.On(EventChange, func(args ...any) { generic = append(generic, args) })

	require.NoError(t, c.Hex().Set("ff00ff"))

	assert.Equal(t, [][]any{{"ff00ff", "ffffff"}}, hex)
	assert.Equal(t, [][]any{{"hex", "ff00ff", "ffffff"}}, generic)
}

func TestColor_RejectsInvalid(t *testing.T) {
	c := NewColor("tint")
	calls := 0
	c.On(EventChange, func(args ...any) { calls++ })

	assert.ErrorIs(t, c.Alpha().Set(1.5), ErrValidation)
	assert.ErrorIs(t, c.Hex().Set("#fff"), ErrValidation)
	assert.ErrorIs(t, c.Hex().Set("ff"), ErrValidation)
	assert.Equal(t, 1.0, c.Alpha().Get())
	assert.Equal(t, DefaultHex, c.Hex().Get())
	assert.Zero(t, calls)
}

func TestSprite_NestedForwarding(t *testing.T) {
	s := NewSprite("hero")

	got := map[string][]any{}
	s.On(observable.AllEvents, func(args ...any) {
		got[args[0].(string)] = args[1:]
	})

	require.NoError(t, s.Transform().Position().X().Set(5))

	assert.Equal(t, map[string][]any{
		"change:transform":            {"position.x", 5.0, 0.0},
		"change:transform.position.x": {5.0, 0.0},
		"change":                      {"transform.position.x", 5.0, 0.0},
	}, got)
}

func TestComposite_Lookup(t *testing.T) {
	s := NewSprite("hero")

	assert.Same(t, s.Transform().Scale().Y(), s.Lookup("transform.scale.y"))
	assert.Same(t, s.Tint(), s.Lookup("tint"))
	assert.Nil(t, s.Lookup("tint.missing"))
	assert.Nil(t, s.Lookup("tint.hex.deeper"))
}

func TestComposite_CopyIsIndependent(t *testing.T) {
	s := NewSprite("hero")
	require.NoError(t, s.Tint().Hex().Set("00ff00"))
	calls := 0
	s.On(EventChange, func(args ...any) { calls++ })

	c := s.Copy().(*Sprite)
	assert.True(t, Equal(s, c))

	copyCalls := 0
	c.On(EventChange, func(args ...any) { copyCalls++ })
	require.NoError(t, c.Tint().Hex().Set("0000ff"))
	require.NoError(t, c.Transform().Rotation().Set(90))

	assert.Equal(t, "00ff00", s.Tint().Hex().Get())
	assert.Zero(t, s.Transform().Rotation().Get())
	assert.Zero(t, calls)
	assert.Equal(t, 2, copyCalls, "copy forwards its own children")
	assert.False(t, Equal(s, c))
	assert.ErrorIs(t, c.Tint().Alpha().Set(-1), ErrValidation, "copy keeps constraints")
}

func TestComposite_ReplaceChild(t *testing.T) {
	c := NewColor("tint")
	prev := c.Hex()
	next, err := NewString("hex", "00ff00")
	require.NoError(t, err)

	var replaced []any
	c.On(ReplaceEvent("hex"), func(args ...any) { replaced = args })
	changes := 0
	c.On(EventChange, func(args ...any) { changes++ })

	require.NoError(t, c.ReplaceChild("hex", next))
	assert.Same(t, next, c.Hex())
	require.Len(t, replaced, 2)
	assert.Same(t, next, replaced[0])
	assert.Same(t, prev, replaced[1])

	require.NoError(t, prev.Set("000000"))
	assert.Zero(t, changes, "previous child is no longer forwarded")

	require.NoError(t, next.Set("0000ff"))
	assert.Equal(t, 1, changes)

	assert.ErrorIs(t, next.Set("not hex"), ErrValidation, "slot constraints carried over")
}

func TestComposite_ReplaceChildErrors(t *testing.T) {
	other := NewColor("other")
	badHex, err := NewString("hex", "zz")
	require.NoError(t, err)
	number, err := NewNumber("hex", 1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		slot  string
		child Component
		want  error
	}{
		{"unknown slot", "missing", number, ErrSchemaViolation},
		{"nil child", "hex", nil, ErrSchemaViolation},
		{"different type", "hex", number, ErrSchemaViolation},
		{"owned child", "hex", other.Hex(), ErrSchemaViolation},
		{"violates slot rules", "hex", badHex, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewColor("tint")
			before := c.Hex()
			err := c.ReplaceChild(tt.slot, tt.child)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Same(t, before, c.Hex())
		})
	}
}

func TestComposite_ReplaceNestedCarriesRules(t *testing.T) {
	s := NewSprite("hero")
	tint := NewColor("tint")
	require.NoError(t, s.ReplaceChild("tint", tint))

	assert.Same(t, tint, s.Tint())
	assert.ErrorIs(t, tint.Alpha().Set(3), ErrValidation)

	var got []any
	s.On(ChangeEvent("tint.alpha"), func(args ...any) { got = args })
	require.NoError(t, tint.Alpha().Set(0.5))
	assert.Equal(t, []any{0.5, 1.0}, got)
}

func TestNewComposite_Schema(t *testing.T) {
	a, err := NewNumber("a", 0)
	require.NoError(t, err)
	dup, err := NewNumber("a", 1)
	require.NoError(t, err)
	dotted, err := NewNumber("a.b", 1)
	require.NoError(t, err)

	_, err = NewComposite("pair", "p", a, dup)
	assert.ErrorIs(t, err, ErrSchemaViolation)
	_, err = NewComposite("pair", "p", dotted)
	assert.ErrorIs(t, err, ErrSchemaViolation)

	p, err := NewComposite("pair", "p", a)
	require.NoError(t, err)
	_, err = NewComposite("pair", "q", a)
	assert.ErrorIs(t, err, ErrSchemaViolation, "a already belongs to p")
	assert.Same(t, a, p.Child("a"))
}

func TestFactories_InitialMapping(t *testing.T) {
	c, err := ColorFactory("tint", map[string]any{"alpha": 0.25, "hex": "123456"})
	require.NoError(t, err)
	color := c.(*Color)
	assert.Equal(t, 0.25, color.Alpha().Get())
	assert.Equal(t, "123456", color.Hex().Get())

	s, err := SpriteFactory("hero", map[string]any{
		"texture":   "hero.png",
		"transform": map[string]any{"rotation": 45, "scale": map[string]any{"x": 2}},
	})
	require.NoError(t, err)
	sprite := s.(*Sprite)
	assert.Equal(t, "hero.png", sprite.Texture().Get())
	assert.Equal(t, 45.0, sprite.Transform().Rotation().Get())
	assert.Equal(t, 2.0, sprite.Transform().Scale().X().Get())
	assert.Equal(t, 1.0, sprite.Transform().Scale().Y().Get())

	_, err = ColorFactory("tint", map[string]any{"alpha": 9})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ColorFactory("tint", map[string]any{"beta": 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ColorFactory("tint", "ffffff")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPoint_Set(t *testing.T) {
	p, err := NewPoint("position", 1, 2)
	require.NoError(t, err)

	require.NoError(t, p.Set(3, 4))
	assert.Equal(t, 3.0, p.X().Get())
	assert.Equal(t, 4.0, p.Y().Get())

	changes := 0
	p.On(EventChange, func(args ...any) { changes++ })

	tests := []struct {
		name string
		x, y float64
	}{
		{"invalid y", 7, math.NaN()},
		{"invalid x", math.Inf(1), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Set(tt.x, tt.y)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 3.0, p.X().Get())
			assert.Equal(t, 4.0, p.Y().Get())
			assert.Zero(t, changes)
		})
	}
}

func TestComposite_ChildNamesFollowSlots(t *testing.T) {
	c := NewColor("tint")
	renames := 0
	c.Hex().On(EventName, func(args ...any) { renames++ })

	c.Hex().SetName("alpha")
	assert.Equal(t, "hex", c.Hex().Name(), "owned children keep their slot name")
	assert.Zero(t, renames)

	next, err := NewString("shade", "00ff00")
	require.NoError(t, err)
	require.NoError(t, c.ReplaceChild("hex", next))
	assert.Equal(t, "hex", next.Name())

	c.SetName("shade")
	assert.Equal(t, "shade", c.Name(), "roots can be renamed")
}
