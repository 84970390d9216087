package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/yame/internal/core/observability/log"
	"github.com/zeusync/yame/internal/injector"
	"github.com/zeusync/yame/internal/ipc/websocket"
	"github.com/zeusync/yame/internal/workspace"
)

type ServeConfig struct {
	*MainConfig
	Serve *cli.Command
	Addr  string `cli:"name=addr desc='listen address, overrides ipc.listenAddr'"`
}

func ServeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ServeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Serve, "serve").
		WithSynopsis("serve [-addr <addr>]").
		WithDescription("run the workspace backend over websocket ipc").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return serve(cfg, cc, args)
		})
}

func serve(cfg *ServeConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Serve.Parse(cc, args); err != nil {
		return err
	}
	c, err := cfg.load()
	if err != nil {
		return err
	}
	if cfg.Addr != "" {
		c.IPC.ListenAddr = cfg.Addr
	}
	backend, err := injector.InitializeBackend(c)
	if err != nil {
		return err
	}
	defer backend.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle(c.IPC.Path, backend.Server)
	srv := &http.Server{
		Addr:              c.IPC.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		backend.Logger.Info("Serving workspace",
			log.String("addr", c.IPC.ListenAddr),
			log.String("path", c.IPC.Path),
			log.Strings("channels", backend.Router.Channels()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.IPC.WriteTimeout)
		defer cancel()
		// hijacked websocket connections are not tracked by Shutdown
		err := srv.Shutdown(shutdownCtx)
		return errors.Join(err, backend.Server.Close())
	})
	fmt.Fprintf(cc.Out, "listening on %s\n", color.CyanString("ws://%s%s", c.IPC.ListenAddr, c.IPC.Path))
	return g.Wait()
}

type ScanConfig struct {
	*MainConfig
	Scan  *cli.Command
	URL   string `cli:"name=url desc='backend url, defaults to the configured ipc address'"`
	Dirs  bool   `cli:"name=dirs desc='list directories only'"`
	Files string `cli:"name=files desc='list the files of one directory of the tree'"`
}

func ScanCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ScanConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Scan, "scan").
		WithSynopsis("scan [-url <url>] [-dirs] [-files <dir>] [root]").
		WithDescription("ask a running backend for the workspace tree and print it").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return scan(cfg, cc, args)
		})
}

func scan(cfg *ScanConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Scan.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: scan takes at most one root directory", cli.ErrUsage)
	}
	c, err := cfg.load()
	if err != nil {
		return err
	}
	root := c.Workspace.Root
	if len(args) == 1 {
		root = args[0]
	}
	url := cfg.URL
	if url == "" {
		url = "ws://" + c.IPC.ListenAddr + c.IPC.Path
	}

	ed, err := injector.InitializeEditor(c)
	if err != nil {
		return err
	}
	defer ed.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := websocket.Dial(ctx, url, websocket.Config{
		ReadBufferSize:  c.IPC.ReadBufferSize,
		WriteBufferSize: c.IPC.WriteBufferSize,
		MaxMessageSize:  c.IPC.MaxMessageSize,
		WriteTimeout:    c.IPC.WriteTimeout,
	}, ed.Logger)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer client.Close()

	svc := workspace.NewService(client,
		workspace.WithTimeout(c.Workspace.ScanTimeout),
		workspace.WithLogger(ed.Logger))
	tree, err := svc.Init(ctx, root)
	if err != nil {
		return err
	}

	switch {
	case cfg.Files != "":
		for _, f := range svc.Files(cfg.Files) {
			fmt.Fprintf(cc.Out, "%s\t%d\n", f.Path, f.Size)
		}
	case cfg.Dirs:
		dirs, err := svc.Directories()
		if err != nil {
			return err
		}
		for _, d := range dirs {
			printTree(cc.Out, d, 0)
		}
	default:
		printTree(cc.Out, tree, 0)
	}
	return nil
}

func printTree(w io.Writer, e *workspace.Entry, depth int) {
	indent := strings.Repeat("  ", depth)
	if e.Dir {
		fmt.Fprintf(w, "%s%s/\n", indent, color.BlueString(e.Name))
	} else {
		fmt.Fprintf(w, "%s%s\n", indent, e.Name)
	}
	for _, child := range e.Children {
		printTree(w, child, depth+1)
	}
}
