package front

import (
	"context"

	"tlog.app/go/errors"

	"github.com/orcc/xronos-sub001/compiler/ir"
)

// NewBlock makes a block running seq in order.
//
// Each component is entered from the done exit of the previous one.
// A component with several exits or no done exit waits for all done exits
// seen so far and its own done bus becomes the go signal of the rest.
// A component without a done exit may only be the last one.
// Exits other than done are merged into exits of the block.
// A procedure body uses RETURN as its main exit and folds return exits into it.
func NewBlock(ctx context.Context, g *ir.Graph, seq []ir.CompID, procBody bool) (ir.CompID, error) {
	if err := check(g, seq...); err != nil {
		return ir.Nil, errors.Wrap(err, "block")
	}

	for i, c := range seq {
		if i < len(seq)-1 && g.MainExit(c) == ir.Nil {
			return ir.Nil, errors.Wrap(ErrNotLast, "block: %v at %d of %d", g.Describe(c), i, len(seq))
		}
	}

	b := g.NewModule(ir.KindBlock, "")
	g.Comp(b).X = &ir.Block{
		Seq:      append([]ir.CompID{}, seq...),
		ProcBody: procBody,
	}

	clock, reset, goBus := g.ClockBus(b), g.ResetBus(b), g.GoBus(b)
	driving := g.InBufExit(b)
	lat := ir.LatencyZero

	var m ir.ExitMap

	for _, c := range seq {
		g.AddComponent(b, c)

		en := enter(ctx, g, b, c, driving, goBus)

		done := g.MainExit(c)

		if len(g.Comp(c).Exits) > 1 || done == ir.Nil {
			for _, e := range m.Remove(ir.CompleteTag) {
				g.AddDependency(en, g.Comp(c).Go, ir.Control, g.DoneBus(e))
			}

			if done != ir.Nil {
				goBus = g.DoneBus(done)
			}
		}

		g.CollectExits(c, &m)

		driving = done

		if done != ir.Nil {
			lat = lat.Add(g.Exit(done).Latency)
		}
	}

	dones := m.Remove(ir.CompleteTag)

	mainType := ir.Done
	var returns []ir.ExitID

	if procBody {
		mainType = ir.Return
		returns = m.Remove(ir.Tag{Type: ir.Return})
	}

	g.MergeExits(b, &m)

	switch {
	case len(dones) != 0:
		e := g.MakeExit(b, mainType, "")
		g.Exit(e).Latency = lat

		ob := g.Comp(g.Exit(e).Peer)
		en := g.OutBufEntry(e, driving)

		g.AddDependency(en, ob.Clock, ir.Clock, clock)
		g.AddDependency(en, ob.Reset, ir.Reset, reset)

		for _, d := range dones {
			g.AddDependency(en, ob.Go, ir.Control, g.DoneBus(d))
		}
	case len(seq) == 0:
		e := g.MakeExit(b, mainType, "")

		en := g.OutBufEntry(e, driving)
		g.AddControlDependencies(en, clock, reset, goBus)
	}

	if len(returns) != 0 {
		var rm ir.ExitMap

		for _, e := range returns {
			rm.Add(e, ir.Tag{Type: mainType})
		}

		g.MergeExits(b, &rm)
	}

	return b, nil
}
