package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/orcc/xronos-sub001/compiler/config"
	"github.com/orcc/xronos-sub001/compiler/df"
	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/prop"
)

type (
	Result struct {
		Stats    df.Stats
		Narrowed int // terminals forced narrower than declared
	}
)

// Optimize propagates values through the design under root until nothing changes
// and then, if enabled, fixes every terminal at its compacted width.
func Optimize(ctx context.Context, g *ir.Graph, root ir.CompID, cfg config.Config) (res Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "optimize", "root", g.Describe(root))
	defer tr.Finish("err", &err)

	err = g.Verify(root)
	if err != nil {
		return res, errors.Wrap(err, "verify")
	}

	res.Stats, err = df.Run(ctx, g, root, cfg.Options())
	if err != nil {
		return res, errors.Wrap(err, "propagate")
	}

	if cfg.Finalize.Enabled {
		res.Narrowed, err = prop.Finalize(ctx, g, root)
		if err != nil {
			return res, errors.Wrap(err, "finalize")
		}
	}

	tr.Printw("optimized", "sweeps", len(res.Stats.Sweeps), "changed", res.Stats.Changed(), "narrowed", res.Narrowed)

	return res, nil
}
