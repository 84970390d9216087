package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/zeusync/yame/internal/core/component"
	"github.com/zeusync/yame/internal/core/scene"
	"github.com/zeusync/yame/internal/injector"
)

type ValidateConfig struct {
	*MainConfig
	Validate *cli.Command
}

func ValidateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ValidateConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Validate, "validate").
		WithAliases("v").
		WithSynopsis("validate files...").
		WithDescription("load documents and report the first error of each").
		WithRun(func(cc *cli.Context, args []string) error {
			return validate(cfg, cc, args)
		})
}

func validate(cfg *ValidateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Validate.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: validate requires at least one file", cli.ErrUsage)
	}
	ed, err := editor(cfg.MainConfig)
	if err != nil {
		return err
	}
	defer ed.Logger.Sync()

	failed := 0
	for _, path := range args {
		doc, err := openDocument(ed, path)
		if err != nil {
			failed++
			fmt.Fprintf(cc.Out, "%s: %s\n", path, color.RedString("%v", err))
			continue
		}
		fmt.Fprintf(cc.Out, "%s: %s (%d components)\n", path, color.GreenString("ok"), doc.Len())
	}
	if failed > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

type FingerprintConfig struct {
	*MainConfig
	Fingerprint *cli.Command
}

func FingerprintCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FingerprintConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Fingerprint, "fingerprint").
		WithAliases("fp").
		WithSynopsis("fingerprint files...").
		WithDescription("print the content hash of documents").
		WithRun(func(cc *cli.Context, args []string) error {
			return fingerprint(cfg, cc, args)
		})
}

func fingerprint(cfg *FingerprintConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fingerprint.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: fingerprint requires at least one file", cli.ErrUsage)
	}
	ed, err := editor(cfg.MainConfig)
	if err != nil {
		return err
	}
	defer ed.Logger.Sync()

	for _, path := range args {
		doc, err := openDocument(ed, path)
		if err != nil {
			return err
		}
		sum, err := doc.Fingerprint()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(cc.Out, "%016x  %s\n", sum, path)
	}
	return nil
}

type DiffConfig struct {
	*MainConfig
	Diff *cli.Command
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d").
		WithSynopsis("diff <from> <to>").
		WithDescription("print a merge patch per component that changed between two documents").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires exactly two files", cli.ErrUsage)
	}
	ed, err := editor(cfg.MainConfig)
	if err != nil {
		return err
	}
	defer ed.Logger.Sync()

	from, err := snapshotFile(ed, args[0])
	if err != nil {
		return err
	}
	to, err := snapshotFile(ed, args[1])
	if err != nil {
		return err
	}
	changed, err := writeDiff(cc.Out, from, to)
	if err != nil {
		return err
	}
	if changed {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// writeDiff prints removed, added and patched roots in the order they appear
// and reports whether anything differs.
func writeDiff(w io.Writer, from, to []component.Data) (bool, error) {
	index := func(ds []component.Data) map[string]component.Data {
		m := make(map[string]component.Data, len(ds))
		for _, d := range ds {
			m[d.Name] = d
		}
		return m
	}
	fromByName, toByName := index(from), index(to)

	changed := false
	for _, d := range from {
		if _, ok := toByName[d.Name]; !ok {
			changed = true
			fmt.Fprintln(w, color.RedString("- %s (%s)", d.Name, d.Tag))
		}
	}
	for _, d := range to {
		prev, ok := fromByName[d.Name]
		if !ok {
			changed = true
			fmt.Fprintln(w, color.GreenString("+ %s (%s)", d.Name, d.Tag))
			continue
		}
		patch, err := component.Diff(prev, d)
		if err != nil {
			return changed, fmt.Errorf("diff %q: %w", d.Name, err)
		}
		if bytes.Equal(patch, []byte("{}")) {
			continue
		}
		changed = true
		fmt.Fprintf(w, "%s %s\n", color.YellowString("~ %s:", d.Name), patch)
	}
	return changed, nil
}

type ConvertConfig struct {
	*MainConfig
	Convert *cli.Command
}

func ConvertCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ConvertConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Convert, "convert").
		WithSynopsis("convert <in> <out>").
		WithDescription("rewrite a document, the formats follow the file extensions").
		WithRun(func(cc *cli.Context, args []string) error {
			return convert(cfg, cc, args)
		})
}

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: convert requires an input and an output file", cli.ErrUsage)
	}
	ed, err := editor(cfg.MainConfig)
	if err != nil {
		return err
	}
	defer ed.Logger.Sync()

	doc, err := openDocument(ed, args[0])
	if err != nil {
		return err
	}
	format, err := scene.FormatFromPath(args[1])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	var buf bytes.Buffer
	if err := doc.Save(&buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "%s -> %s\n", args[0], color.GreenString(args[1]))
	return nil
}

func editor(cfg *MainConfig) (*injector.Editor, error) {
	c, err := cfg.load()
	if err != nil {
		return nil, err
	}
	return injector.InitializeEditor(c)
}

func openDocument(ed *injector.Editor, path string) (*scene.Document, error) {
	format, err := scene.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := scene.Load(f, format,
		scene.WithRegistry(ed.Registry),
		scene.WithBus(ed.Bus),
		scene.WithLogger(ed.Logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func snapshotFile(ed *injector.Editor, path string) ([]component.Data, error) {
	doc, err := openDocument(ed, path)
	if err != nil {
		return nil, err
	}
	return doc.Snapshot()
}
