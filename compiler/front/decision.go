package front

import (
	"context"

	"tlog.app/go/errors"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/tp"
)

// NewDecision makes a decision over the 1-bit result of test,
// a component inside testBlock.
// The decision leaves through TrueTag when the result is set
// and through FalseTag otherwise.
func NewDecision(ctx context.Context, g *ir.Graph, testBlock, test ir.CompID) (ir.CompID, error) {
	if err := expectKind(g, testBlock, ir.KindBlock); err != nil {
		return ir.Nil, errors.Wrap(err, "decision: test block")
	}

	if err := check(g, testBlock); err != nil {
		return ir.Nil, errors.Wrap(err, "decision")
	}

	if g.Comp(test).Owner != testBlock {
		return ir.Nil, errors.Wrap(ir.ErrNotChild, "decision: test %v", g.Describe(test))
	}

	tdone := g.MainExit(testBlock)
	if tdone == ir.Nil || len(g.Comp(g.Exit(tdone).Peer).Entries) == 0 {
		return ir.Nil, errors.New("decision: test block %v never completes", g.Describe(testBlock))
	}

	cond := g.ResultBus(test)
	if cond == ir.Nil {
		return ir.Nil, errors.Wrap(ErrNoResult, "decision: test %v", g.Describe(test))
	}

	if v := g.Bus(cond).Value; v != nil && v.Size() != 1 {
		return ir.Nil, errors.New("decision: test %v result is %d bits", g.Describe(test), v.Size())
	}

	d := g.NewModule(ir.KindDecision, "")

	x := &ir.Decision{
		TestBlock: testBlock,
		Test:      test,
		Not:       g.NewNot(),
		TrueAnd:   g.NewAnd(2),
		FalseAnd:  g.NewAnd(2),
	}

	g.Comp(d).X = x

	for _, c := range []ir.CompID{testBlock, x.Not, x.TrueAnd, x.FalseAnd} {
		g.AddComponent(d, c)
	}

	te := g.MakeExit(d, ir.TrueTag.Type, ir.TrueTag.Label)
	fe := g.MakeExit(d, ir.FalseTag.Type, ir.FalseTag.Label)

	g.Exit(te).Latency = g.Exit(tdone).Latency
	g.Exit(fe).Latency = g.Exit(tdone).Latency

	clock, reset, goBus := g.ClockBus(d), g.ResetBus(d), g.GoBus(d)

	// control
	enter(ctx, g, d, testBlock, g.InBufExit(d), goBus)

	taEn := enter(ctx, g, d, x.TrueAnd, tdone, goBus)
	g.AddControlDependencies(g.OutBufEntry(te, g.MainExit(x.TrueAnd)), clock, reset, g.ResultBus(x.TrueAnd))

	notEn := enter(ctx, g, d, x.Not, tdone, goBus)

	faEn := enter(ctx, g, d, x.FalseAnd, g.MainExit(x.Not), goBus)
	g.AddControlDependencies(g.OutBufEntry(fe, g.MainExit(x.FalseAnd)), clock, reset, g.ResultBus(x.FalseAnd))

	// data
	tbus := g.MakeDataBus(tdone, tp.Bool)
	tob := g.Comp(g.Exit(tdone).Peer)
	g.AddDependency(tob.Entries[0], g.Bus(tbus).Peer, ir.Data, cond)

	ta := g.Comp(x.TrueAnd)
	g.AddDependency(taEn, ta.Data[0], ir.Data, g.DoneBus(tdone))
	g.AddDependency(taEn, ta.Data[1], ir.Data, tbus)

	g.AddDependency(notEn, g.Comp(x.Not).Data[0], ir.Data, tbus)

	fa := g.Comp(x.FalseAnd)
	g.AddDependency(faEn, fa.Data[0], ir.Data, g.DoneBus(g.MainExit(x.Not)))
	g.AddDependency(faEn, fa.Data[1], ir.Data, g.ResultBus(x.Not))

	var m ir.ExitMap

	g.CollectExits(testBlock, &m)
	m.Remove(ir.CompleteTag)

	g.MergeExits(d, &m)

	return d, nil
}

// NewBranch makes an if-else over decision.
// Each arm is entered from the matching decision exit. A Nil arm
// passes its decision exit straight to the branch done exit.
func NewBranch(ctx context.Context, g *ir.Graph, decision, trueArm, falseArm ir.CompID) (ir.CompID, error) {
	if err := expectKind(g, decision, ir.KindDecision); err != nil {
		return ir.Nil, errors.Wrap(err, "branch")
	}

	if err := check(g, decision, trueArm, falseArm); err != nil {
		return ir.Nil, errors.Wrap(err, "branch")
	}

	br := g.NewModule(ir.KindBranch, "")
	g.Comp(br).X = &ir.Branch{
		Decision: decision,
		True:     trueArm,
		False:    falseArm,
	}

	for _, c := range []ir.CompID{decision, trueArm, falseArm} {
		if c != ir.Nil {
			g.AddComponent(br, c)
		}
	}

	enter(ctx, g, br, decision, g.InBufExit(br), g.GoBus(br))

	var m ir.ExitMap

	for _, e := range g.Comp(decision).Exits {
		if t := g.Exit(e).Tag; t != ir.TrueTag && t != ir.FalseTag {
			m.Add(e, t)
		}
	}

	for _, arm := range []struct {
		c   ir.CompID
		tag ir.Tag
	}{
		{c: trueArm, tag: ir.TrueTag},
		{c: falseArm, tag: ir.FalseTag},
	} {
		de := g.ExitByTag(decision, arm.tag)

		if arm.c == ir.Nil {
			m.Add(de, ir.CompleteTag)
			continue
		}

		enter(ctx, g, br, arm.c, de, g.DoneBus(de))
		g.CollectExits(arm.c, &m)
	}

	g.MergeExits(br, &m)

	return br, nil
}
