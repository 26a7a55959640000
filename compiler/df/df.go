package df

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/prop"
)

type (
	Options struct {
		MaxSweeps int  // 0 means DefaultMaxSweeps
		Backward  bool // run backward sweeps as well
	}

	// Sweep counts components changed by one round.
	Sweep struct {
		Forward  int
		Backward int
	}

	Stats struct {
		Sweeps []Sweep
	}
)

const DefaultMaxSweeps = 64

var ErrNotConverged = errors.New("propagation did not converge")

// Run sweeps the graph under root forward in producer order and
// backward in reverse until a sweep changes nothing.
func Run(ctx context.Context, g *ir.Graph, root ir.CompID, opts Options) (st Stats, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "df: run", "root", g.Describe(root), "backward", opts.Backward)
	defer tr.Finish("err", &err)

	max := opts.MaxSweeps
	if max <= 0 {
		max = DefaultMaxSweeps
	}

	order := Order(g, root)

	for i := 0; i < max; i++ {
		if err = ctx.Err(); err != nil {
			return st, errors.Wrap(err, "sweep %d", i)
		}

		var sw Sweep

		sw.Forward, err = forward(ctx, g, order)
		if err != nil {
			return st, errors.Wrap(err, "sweep %d: forward", i)
		}

		if opts.Backward {
			sw.Backward, err = backward(ctx, g, order)
			if err != nil {
				return st, errors.Wrap(err, "sweep %d: backward", i)
			}
		}

		st.Sweeps = append(st.Sweeps, sw)

		tr.V("sweep").Printw("sweep", "i", i, "forward", sw.Forward, "backward", sw.Backward)

		if sw.Forward == 0 && sw.Backward == 0 {
			return st, nil
		}
	}

	return st, errors.Wrap(ErrNotConverged, "%d sweeps", max)
}

// Order lists root and everything inside it the way producers build it:
// each module before its InBuf, children and OutBufs.
func Order(g *ir.Graph, root ir.CompID) (r []ir.CompID) {
	g.Walk(root, func(c ir.CompID) bool {
		r = append(r, c)
		return true
	})

	return r
}

func forward(ctx context.Context, g *ir.Graph, order []ir.CompID) (n int, err error) {
	for _, c := range order {
		mod, err := prop.Forward(ctx, g, c)
		if err != nil {
			return n, err
		}

		if mod {
			n++
		}
	}

	return n, nil
}

func backward(ctx context.Context, g *ir.Graph, order []ir.CompID) (n int, err error) {
	for i := len(order) - 1; i >= 0; i-- {
		mod, err := prop.Backward(ctx, g, order[i])
		if err != nil {
			return n, err
		}

		if mod {
			n++
		}
	}

	return n, nil
}

// Changed sums the changes over all sweeps.
func (st Stats) Changed() (n int) {
	for _, s := range st.Sweeps {
		n += s.Forward + s.Backward
	}

	return n
}
