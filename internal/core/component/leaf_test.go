package component

import (
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_Set(t *testing.T) {
	n, err := NewNumber("alpha", 1, InRange(0, 1))
	require.NoError(t, err)

	var events [][]any
	n.On(EventChange, func(args ...any) { events = append(events, args) })

	require.NoError(t, n.Set(0.5))
	require.NoError(t, n.Set(0.5))
	assert.Equal(t, [][]any{{0.5, 1.0}}, events)

	err = n.Set(2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, NumberTag, verr.Tag)
	assert.Equal(t, "alpha", verr.Name)
	assert.Equal(t, 0.5, n.Get(), "rejected value must not be stored")
	assert.Len(t, events, 1)
}

func TestNumber_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
		{"string", "1"},
		{"bool", true},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNumber("x", 3)
			require.NoError(t, err)
			err = n.SetValue(tt.value)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 3.0, n.Get())
		})
	}
}

func TestNumber_Coercion(t *testing.T) {
	n, err := NewNumber("x", 0)
	require.NoError(t, err)

	require.NoError(t, n.SetValue(int64(4)))
	assert.Equal(t, 4.0, n.Get())
	require.NoError(t, n.SetValue(uint8(7)))
	assert.Equal(t, 7.0, n.Get())
	require.NoError(t, n.SetValue(float32(0.25)))
	assert.Equal(t, 0.25, n.Get())
}

func TestNewNumber_InvalidInitial(t *testing.T) {
	n, err := NewNumber("alpha", 3, InRange(0, 1))
	assert.Nil(t, n)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestString_Rules(t *testing.T) {
	s, err := NewString("hex", "fff", Matches(regexp.MustCompile(`^[0-9a-f]+$`)), MaxLength(6))
	require.NoError(t, err)

	assert.NoError(t, s.Set("00ff00"))
	assert.ErrorIs(t, s.Set("xyz"), ErrValidation)
	assert.ErrorIs(t, s.Set("0000000"), ErrValidation)
	assert.ErrorIs(t, s.SetValue(12), ErrValidation)
	assert.Equal(t, "00ff00", s.Get())
}

func TestFile(t *testing.T) {
	f, err := NewFile("texture", "")
	require.NoError(t, err)
	assert.False(t, f.IsSet())

	var got []any
	f.On(EventChange, func(args ...any) { got = append(got, args[0]) })

	require.NoError(t, f.Set("sprites/../sprites/hero.png"))
	assert.Equal(t, "sprites/hero.png", f.Get())
	assert.Equal(t, ".png", f.Ext())

	// cleans to the current value, no event
	require.NoError(t, f.Set("sprites//hero.png"))
	assert.Equal(t, []any{"sprites/hero.png"}, got)

	assert.ErrorIs(t, f.Set(""), ErrValidation)
	assert.ErrorIs(t, f.Set("bad\x00name"), ErrValidation)
	assert.Equal(t, "sprites/hero.png", f.Get())

	_, err = NewFile("texture", "a\x00b")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBool(t *testing.T) {
	b := NewBool("visible", true)
	calls := 0
	b.On(EventChange, func(args ...any) { calls++ })

	b.Toggle()
	assert.False(t, b.Get())
	assert.ErrorIs(t, b.SetValue("yes"), ErrValidation)
	assert.Equal(t, 1, calls)
}

func TestSetName(t *testing.T) {
	n, err := NewNumber("x", 0)
	require.NoError(t, err)

	var got []any
	n.On(EventName, func(args ...any) { got = args })
	n.SetName("y")
	assert.Equal(t, "y", n.Name())
	assert.Equal(t, []any{"y", "x"}, got)
}

func TestLeaf_CopyIsIndependent(t *testing.T) {
	n, err := NewNumber("alpha", 0.5, InRange(0, 1))
	require.NoError(t, err)
	calls := 0
	n.On(EventChange, func(args ...any) { calls++ })

	c := n.Copy().(*Number)
	require.NoError(t, c.Set(0.75))
	assert.Equal(t, 0.5, n.Get())
	assert.Zero(t, calls, "listeners are not copied")
	assert.ErrorIs(t, c.Set(2), ErrValidation, "rules are copied")
}
