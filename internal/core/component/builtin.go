package component

import (
	"sync"

	"github.com/zeusync/yame/internal/core/observability/log"
)

var builtins = []struct {
	tag     string
	factory Factory
}{
	{NumberTag, NumberFactory},
	{StringTag, StringFactory},
	{FileTag, FileFactory},
	{BoolTag, BoolFactory},
	{ColorTag, ColorFactory},
	{PointTag, PointFactory},
	{TransformTag, TransformFactory},
	{SpriteTag, SpriteFactory},
}

// RegisterBuiltins defines every component type of this package on r.
func RegisterBuiltins(r *Registry) error {
	for _, b := range builtins {
		if err := r.Define(b.tag, b.factory); err != nil {
			return err
		}
	}
	return nil
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process wide registry holding the built-in types.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry(WithLogger(log.Provide()))
		if err := RegisterBuiltins(r); err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
