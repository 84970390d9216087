//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/yame/internal/config"
)

func InitializeEditor(cfg config.Config) (*Editor, error) {
	wire.Build(EditorSet)
	return nil, nil
}

func InitializeBackend(cfg config.Config) (*Backend, error) {
	wire.Build(BackendSet)
	return nil, nil
}
