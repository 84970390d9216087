package component

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid component value")
	// ErrUnknownTag is matched by every *UnknownTagError.
	ErrUnknownTag = errors.New("unknown component tag")
	// ErrDuplicateTag is matched by every *DuplicateTagError.
	ErrDuplicateTag = errors.New("component tag already defined")
	// ErrMalformedData is matched by every *MalformedDataError.
	ErrMalformedData = errors.New("malformed component data")

	// ErrSchemaViolation is returned when a composite child slot is misused.
	ErrSchemaViolation = errors.New("composite schema violation")
	// ErrInvalidDefinition is returned for an empty tag or a nil factory.
	ErrInvalidDefinition = errors.New("invalid component definition")
)

// ValidationError reports a value rejected by a component. The component keeps
// its previous value.
type ValidationError struct {
	Tag    string
	Name   string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q rejected value %v: %s", e.Tag, e.Name, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnknownTagError reports a registry lookup for a tag nobody defined.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown component tag %q", e.Tag)
}

func (e *UnknownTagError) Unwrap() error { return ErrUnknownTag }

// DuplicateTagError reports a second, different factory defined for a tag.
type DuplicateTagError struct {
	Tag string
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("component tag %q is already defined with a different factory", e.Tag)
}

func (e *DuplicateTagError) Unwrap() error { return ErrDuplicateTag }

// MalformedDataError reports serialized data that does not match the tagged
// shape. Path locates the offending node ("" for the root, "tint.hex" below it).
type MalformedDataError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *MalformedDataError) Error() string {
	var b strings.Builder
	b.WriteString("malformed component data")
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *MalformedDataError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrMalformedData}
	}
	return []error{ErrMalformedData, e.Cause}
}

func malformed(path, reason string, cause error) *MalformedDataError {
	return &MalformedDataError{Path: path, Reason: reason, Cause: cause}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
