// Package front composes components into structured modules:
// sequential blocks, decisions, branches and loops.
package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/orcc/xronos-sub001/compiler/ir"
)

var (
	ErrNotLast  = errors.New("component without done exit must be last")
	ErrOwned    = errors.New("component already owned")
	ErrEntered  = errors.New("component already has entries")
	ErrBadKind  = errors.New("unexpected component kind")
	ErrNoResult = errors.New("no result bus")
)

// check makes sure every non Nil c is free to be composed.
func check(g *ir.Graph, cs ...ir.CompID) error {
	for _, c := range cs {
		if c == ir.Nil {
			continue
		}

		x := g.Comp(c)

		switch {
		case x.Owner != ir.Nil:
			return errors.Wrap(ErrOwned, "%v by %v", g.Describe(c), g.Describe(x.Owner))
		case len(x.Entries) != 0:
			return errors.Wrap(ErrEntered, "%v", g.Describe(c))
		}
	}

	return nil
}

func expectKind(g *ir.Graph, c ir.CompID, k ir.Kind) error {
	if c == ir.Nil || g.Kind(c) != k {
		what := "nil"
		if c != ir.Nil {
			what = g.Describe(c)
		}

		return errors.Wrap(ErrBadKind, "%v, want %v", what, k)
	}

	return nil
}

// enter makes an entry of child c of m driven by exit driving and gated by goBus.
func enter(ctx context.Context, g *ir.Graph, m, c ir.CompID, driving ir.ExitID, goBus ir.BusID) ir.EntryID {
	en := g.MakeEntry(c, driving)
	g.AddControlDependencies(en, g.ClockBus(m), g.ResetBus(m), goBus)

	tlog.SpanFromContext(ctx).V("front").Printw("enter", "comp", g.Describe(c), "module", g.Describe(m), "driving", driving)

	return en
}

// foldContinue moves the entries of the continue exit of module body
// into its done exit and removes the continue exit.
// It returns the exit the next stage is entered from: done, continue or Nil.
func foldContinue(ctx context.Context, g *ir.Graph, body ir.CompID) ir.ExitID {
	done := g.MainExit(body)
	cont := g.ExitByTag(body, ir.Tag{Type: ir.Continue})

	switch {
	case done == ir.Nil:
		return cont
	case cont == ir.Nil:
		return done
	}

	dob := g.Exit(done).Peer
	cob := g.Exit(cont).Peer

	if dob == ir.Nil || cob == ir.Nil {
		return done
	}

	dx, cx := g.Comp(dob), g.Comp(cob)

	for _, cen := range cx.Entries {
		en := g.MakeEntry(dob, g.Entry(cen).Driving)

		for _, pp := range [][2]ir.PortID{{cx.Clock, dx.Clock}, {cx.Reset, dx.Reset}, {cx.Go, dx.Go}} {
			for _, d := range g.DepsOf(cen, pp[0]) {
				dep := g.Dep(d)
				g.AddDependency(en, pp[1], dep.Kind, dep.Bus)
			}
		}
	}

	g.RemoveExit(cont)

	tlog.SpanFromContext(ctx).V("front").Printw("fold continue", "body", g.Describe(body), "entries", len(cx.Entries))

	return done
}
