package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/yame/internal/config"
	"github.com/zeusync/yame/internal/core/component"
	"github.com/zeusync/yame/internal/core/events/bus"
	"github.com/zeusync/yame/internal/core/observability/log"
	"github.com/zeusync/yame/internal/ipc"
	"github.com/zeusync/yame/internal/ipc/websocket"
	"github.com/zeusync/yame/internal/workspace"
)

// Editor bundles what the document commands need.
type Editor struct {
	Config   config.Config
	Logger   *log.Logger
	Registry *component.Registry
	Bus      bus.EventBus
}

// Backend bundles the process serving the workspace over ipc.
type Backend struct {
	Config  config.Config
	Logger  *log.Logger
	Scanner *workspace.Scanner
	Router  *ipc.Router
	Server  *websocket.Server
}

var LoggerSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
)

var EditorSet = wire.NewSet(
	LoggerSet,
	ProvideRegistry,
	ProvideBus,
	wire.Struct(new(Editor), "*"),
)

var BackendSet = wire.NewSet(
	LoggerSet,
	ProvideScanner,
	ProvideRouter,
	ProvideTransportConfig,
	ProvideIPCServer,
	wire.Struct(new(Backend), "*"),
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(cfg.LogLevel(), log.WithEncoding(log.Encoding(cfg.Log.Format)))
}

func ProvideRegistry(logger log.Log) (*component.Registry, error) {
	r := component.NewRegistry(component.WithLogger(logger.With(log.String("scope", "registry"))))
	if err := component.RegisterBuiltins(r); err != nil {
		return nil, err
	}
	return r, nil
}

func ProvideBus(logger log.Log) bus.EventBus {
	b := bus.New()
	b.AddObserver(bus.NewLogObserver(logger.With(log.String("scope", "bus"))))
	return b
}

func ProvideScanner(cfg config.Config, logger log.Log) *workspace.Scanner {
	return workspace.NewScanner(
		workspace.WithConcurrency(cfg.Workspace.Concurrency),
		workspace.WithSkipHidden(cfg.Workspace.SkipHidden),
		workspace.WithScannerLogger(logger),
	)
}

func ProvideRouter(scanner *workspace.Scanner, logger log.Log) *ipc.Router {
	r := ipc.NewRouter(ipc.WithLogger(logger.With(log.String("scope", "ipc"))))
	workspace.RegisterScanHandler(r, scanner)
	return r
}

func ProvideTransportConfig(cfg config.Config) websocket.Config {
	return websocket.Config{
		ReadBufferSize:  cfg.IPC.ReadBufferSize,
		WriteBufferSize: cfg.IPC.WriteBufferSize,
		MaxMessageSize:  cfg.IPC.MaxMessageSize,
		WriteTimeout:    cfg.IPC.WriteTimeout,
	}
}

func ProvideIPCServer(router *ipc.Router, transport websocket.Config, logger log.Log) *websocket.Server {
	return websocket.NewServer(router, transport, logger)
}
