package component

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"
)

// Rule validates a scalar and explains a rejection through its error.
type Rule[T any] func(value T) error

// leaf implements the shared behaviour of all scalar components.
type leaf[T comparable] struct {
	base

	value  T
	coerce func(any) (T, bool)
	rules  []Rule[T]
	// normalize runs on every Set, after the rules. Constructors skip it for
	// the zero value, which stands for "unset".
	normalize func(T) (T, error)
}

func (l *leaf[T]) init(tag, name string, value T, coerce func(any) (T, bool), rules []Rule[T]) error {
	l.tag = tag
	l.name = name
	l.coerce = coerce
	l.rules = rules
	if err := l.check(value); err != nil {
		return err
	}
	l.value = value
	return nil
}

// Get returns the current scalar.
func (l *leaf[T]) Get() T { return l.value }

// Value returns the current scalar.
func (l *leaf[T]) Value() any { return l.value }

// Set validates value, stores it and emits EventChange (new, previous).
// An equal value is accepted without an event. On error nothing changes.
func (l *leaf[T]) Set(value T) error {
	if err := l.check(value); err != nil {
		return err
	}
	if l.normalize != nil {
		normalized, err := l.normalize(value)
		if err != nil {
			return l.reject(value, err)
		}
		value = normalized
	}
	if value == l.value {
		return nil
	}
	prev := l.value
	l.value = value
	l.Trigger(EventChange, value, prev)
	return nil
}

// SetValue coerces value to the scalar kind of the leaf and calls Set.
func (l *leaf[T]) SetValue(value any) error {
	v, ok := l.coerce(value)
	if !ok {
		var zero T
		return l.reject(value, fmt.Errorf("expected %T, got %T", zero, value))
	}
	return l.Set(v)
}

func (l *leaf[T]) check(value T) error {
	for _, rule := range l.rules {
		if err := rule(value); err != nil {
			return l.reject(value, err)
		}
	}
	return nil
}

func (l *leaf[T]) reject(value any, reason error) *ValidationError {
	return &ValidationError{Tag: l.tag, Name: l.name, Value: value, Reason: reason.Error()}
}

func (l *leaf[T]) cloneInto(dst *leaf[T]) {
	dst.tag = l.tag
	dst.name = l.name
	dst.value = l.value
	dst.coerce = l.coerce
	dst.rules = append([]Rule[T](nil), l.rules...)
	dst.normalize = l.normalize
}

func (l *leaf[T]) leafBase() *leaf[T] { return l }

func (l *leaf[T]) checkCarry(next Component) error {
	nb, ok := next.(interface{ leafBase() *leaf[T] })
	if !ok {
		return fmt.Errorf("%w: %s cannot replace %s", ErrSchemaViolation, next.Type(), l.tag)
	}
	n := nb.leafBase()
	for _, rule := range l.rules {
		if err := rule(n.value); err != nil {
			return n.reject(n.value, err)
		}
	}
	return nil
}

func (l *leaf[T]) carry(next Component) {
	n := next.(interface{ leafBase() *leaf[T] }).leafBase()
	n.rules = append([]Rule[T](nil), l.rules...)
	n.normalize = l.normalize
}

// Finite rejects NaN and infinities.
func Finite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%v is not a finite number", v)
	}
	return nil
}

// InRange returns a rule accepting values within [min, max].
func InRange(min, max float64) Rule[float64] {
	return func(v float64) error {
		if v < min || v > max {
			return fmt.Errorf("%v is out of range [%v, %v]", v, min, max)
		}
		return nil
	}
}

// Matches returns a rule accepting strings matching re.
func Matches(re *regexp.Regexp) Rule[string] {
	return func(v string) error {
		if !re.MatchString(v) {
			return fmt.Errorf("%q does not match %s", v, re)
		}
		return nil
	}
}

// MaxLength returns a rule accepting strings of at most n characters.
func MaxLength(n int) Rule[string] {
	return func(v string) error {
		if utf8.RuneCountInString(v) > n {
			return fmt.Errorf("longer than %d characters", n)
		}
		return nil
	}
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func coerceBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}
