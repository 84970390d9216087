package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/zeusync/yame/internal/config"
)

type MainConfig struct {
	ConfigFile string `cli:"name=config desc='configuration file (yaml)'"`
	LogLevel   string `cli:"name=log desc='log level: debug, info, warn, error or silent'"`

	Main *cli.Command
}

// load returns the configuration selected by the global options.
func (cfg *MainConfig) load() (config.Config, error) {
	c := config.Default()
	if cfg.ConfigFile != "" {
		var err error
		c, err = config.Load(cfg.ConfigFile)
		if err != nil {
			return config.Config{}, err
		}
	}
	if cfg.LogLevel != "" {
		c.Log.Level = cfg.LogLevel
		if err := c.Validate(); err != nil {
			return config.Config{}, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
	}
	return c, nil
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "yame").
		WithSynopsis("yame [opts] command [opts]").
		WithDescription("yame works with editor documents and serves the workspace backend.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return yameMain(cfg, cc, args)
		}).
		WithSubs(
			ValidateCommand(cfg),
			FingerprintCommand(cfg),
			DiffCommand(cfg),
			ConvertCommand(cfg),
			ServeCommand(cfg),
			ScanCommand(cfg))
}

func yameMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}
