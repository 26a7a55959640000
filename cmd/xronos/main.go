package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/orcc/xronos-sub001/compiler"
	"github.com/orcc/xronos-sub001/compiler/config"
	"github.com/orcc/xronos-sub001/compiler/format"
	"github.com/orcc/xronos-sub001/compiler/front"
	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/report"
	"github.com/orcc/xronos-sub001/compiler/tp"
	"github.com/orcc/xronos-sub001/compiler/value"
)

func main() {
	valueCmd := &cli.Command{
		Name:        "value",
		Description: "parse bit literals and print their state",
		Action:      valueAct,
		Args:        cli.Args{},
	}

	andCmd := &cli.Command{
		Name:        "and",
		Description: "propagate literals through a bitwise and",
		Action:      andAct,
		Args:        cli.Args{},
	}

	demoCmd := &cli.Command{
		Name:        "demo",
		Description: "optimize a sample design and print the result",
		Action:      demoAct,
	}

	app := &cli.Command{
		Name:        "xronos",
		Description: "xronos propagates bit values through hardware designs",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("config,c", "", "TOML config file"),
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			valueCmd,
			andCmd,
			demoCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	if v := c.String("verbosity"); v != "" {
		tlog.SetVerbosity(v)
	}

	return nil
}

func loadConfig(c *cli.Command) (config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, errors.Wrap(err, "load config")
	}

	if cfg.Log.Verbosity != "" && c.String("verbosity") == "" {
		tlog.SetVerbosity(cfg.Log.Verbosity)
	}

	return cfg, nil
}

func valueAct(c *cli.Command) (err error) {
	vals := make([]*value.Value, len(c.Args))

	for i, a := range c.Args {
		vals[i], err = value.Parse(a)
		if err != nil {
			return errors.Wrap(err, "parse %q", a)
		}
	}

	report.Values(os.Stdout, c.Args, vals)

	return nil
}

func andAct(c *cli.Command) (err error) {
	if len(c.Args) != 2 {
		return errors.New("want 2 literals, got %d", len(c.Args))
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	cfg.Finalize.Enabled = false

	g := ir.New()

	var ks [2]ir.CompID

	for i, a := range c.Args {
		v, err := value.Parse(a)
		if err != nil {
			return errors.Wrap(err, "parse %q", a)
		}

		ks[i] = g.NewConstant(v)
	}

	l := g.Bus(g.ResultBus(ks[0])).Value
	r := g.Bus(g.ResultBus(ks[1])).Value

	op := g.NewBinaryOp(ir.KindAndOp, typeOf(l), typeOf(r))

	blk, err := front.NewBlock(ctx, g, []ir.CompID{ks[0], ks[1], op}, false)
	if err != nil {
		return errors.Wrap(err, "block")
	}

	en := g.Comp(op).Entries[0]
	g.AddDependency(en, g.Comp(op).Data[0], ir.Data, g.ResultBus(ks[0]))
	g.AddDependency(en, g.Comp(op).Data[1], ir.Data, g.ResultBus(ks[1]))

	_, err = compiler.Optimize(ctx, g, blk, cfg)
	if err != nil {
		return errors.Wrap(err, "optimize")
	}

	res := g.Bus(g.ResultBus(op)).Value

	fmt.Printf("%v & %v = %v\n", l.Token(), r.Token(), res.Token())

	return nil
}

func demoAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	g := ir.New()

	top, err := compiler.Demo(ctx, g)
	if err != nil {
		return errors.Wrap(err, "build")
	}

	res, err := compiler.Optimize(ctx, g, top, cfg)
	if err != nil {
		return errors.Wrap(err, "optimize")
	}

	b, err := format.Dump(ctx, nil, g, top)
	if err != nil {
		return errors.Wrap(err, "dump")
	}

	_, err = os.Stdout.Write(b)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	if cfg.Report.Sweeps {
		report.Sweeps(os.Stdout, res.Stats)
	}

	if cfg.Report.Widths {
		saved := report.Widths(os.Stdout, g, top)

		fmt.Printf("narrowed %d terminals, %d bus bits saved\n", res.Narrowed, saved)
	}

	return nil
}

func typeOf(v *value.Value) tp.Int {
	return tp.Int{Bits: int16(v.Size()), Signed: v.IsSigned()}
}
