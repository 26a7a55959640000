package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/tp"
	"github.com/orcc/xronos-sub001/compiler/value"
)

func leaf(g *ir.Graph, types ...ir.ExitType) ir.CompID {
	c := g.NewComponent(ir.KindNoOp, "")

	for _, t := range types {
		g.MakeExit(c, t, "")
	}

	return c
}

func decision(t *testing.T, g *ir.Graph) ir.CompID {
	ctx := context.Background()

	test := g.NewConstant(value.MustParse("1"))

	tb, err := NewBlock(ctx, g, []ir.CompID{test}, false)
	require.NoError(t, err)

	d, err := NewDecision(ctx, g, tb, test)
	require.NoError(t, err)

	return d
}

func depBuses(g *ir.Graph, en ir.EntryID, p ir.PortID) (r []ir.BusID) {
	for _, d := range g.DepsOf(en, p) {
		r = append(r, g.Dep(d).Bus)
	}

	return r
}

func onlyEntry(t *testing.T, g *ir.Graph, c ir.CompID) ir.EntryID {
	t.Helper()

	require.Len(t, g.Comp(c).Entries, 1, "entries of %v", g.Describe(c))

	return g.Comp(c).Entries[0]
}

func outBuf(g *ir.Graph, e ir.ExitID) ir.CompID {
	return g.Exit(e).Peer
}

func TestBlockMergesExits(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	a := leaf(g, ir.Done)
	b := leaf(g, ir.Done, ir.Break)
	c := leaf(g, ir.Done)

	blk, err := NewBlock(ctx, g, []ir.CompID{a, b, c}, false)
	require.NoError(t, err)

	assert.Equal(t, []ir.CompID{a, b, c}, g.Comp(blk).Children)
	assert.Equal(t, []ir.CompID{a, b, c}, g.Comp(blk).X.(*ir.Block).Seq)

	require.Len(t, g.Comp(blk).Exits, 2)

	brk := g.ExitByTag(blk, ir.Tag{Type: ir.Break})
	done := g.MainExit(blk)
	require.NotEqual(t, ir.ExitID(ir.Nil), brk)
	require.NotEqual(t, ir.ExitID(ir.Nil), done)

	en := onlyEntry(t, g, outBuf(g, brk))
	assert.Equal(t, g.ExitByTag(b, ir.Tag{Type: ir.Break}), g.Entry(en).Driving)

	en = onlyEntry(t, g, a)
	assert.Equal(t, g.InBufExit(blk), g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.GoBus(blk)}, depBuses(g, en, g.Comp(a).Go))

	en = onlyEntry(t, g, b)
	assert.Equal(t, g.MainExit(a), g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.GoBus(blk), g.DoneBus(g.MainExit(a))}, depBuses(g, en, g.Comp(b).Go))

	en = onlyEntry(t, g, c)
	assert.Equal(t, g.MainExit(b), g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.DoneBus(g.MainExit(b))}, depBuses(g, en, g.Comp(c).Go))

	ob := outBuf(g, done)
	en = onlyEntry(t, g, ob)
	assert.Equal(t, g.MainExit(c), g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.DoneBus(g.MainExit(b)), g.DoneBus(g.MainExit(c))}, depBuses(g, en, g.Comp(ob).Go))
	assert.Equal(t, []ir.BusID{g.ClockBus(blk)}, depBuses(g, en, g.Comp(ob).Clock))

	assert.NoError(t, g.Verify(blk))
}

func TestEmptyBlock(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	blk, err := NewBlock(ctx, g, nil, false)
	require.NoError(t, err)

	require.Len(t, g.Comp(blk).Exits, 1)

	done := g.MainExit(blk)
	require.NotEqual(t, ir.ExitID(ir.Nil), done)

	ob := outBuf(g, done)
	en := onlyEntry(t, g, ob)

	assert.Equal(t, g.InBufExit(blk), g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.GoBus(blk)}, depBuses(g, en, g.Comp(ob).Go))
	assert.Equal(t, []ir.BusID{g.ResetBus(blk)}, depBuses(g, en, g.Comp(ob).Reset))

	assert.NoError(t, g.Verify(blk))
}

func TestBlockProcedureBody(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	a := leaf(g, ir.Done, ir.Return)
	b := leaf(g, ir.Done)

	blk, err := NewBlock(ctx, g, []ir.CompID{a, b}, true)
	require.NoError(t, err)

	require.Len(t, g.Comp(blk).Exits, 1)

	ret := g.ExitByTag(blk, ir.Tag{Type: ir.Return})
	require.NotEqual(t, ir.ExitID(ir.Nil), ret)

	ens := g.Comp(outBuf(g, ret)).Entries
	require.Len(t, ens, 2)

	assert.Equal(t, g.MainExit(b), g.Entry(ens[0]).Driving)
	assert.Equal(t, g.ExitByTag(a, ir.Tag{Type: ir.Return}), g.Entry(ens[1]).Driving)

	assert.NoError(t, g.Verify(blk))
}

func TestBlockErrors(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	a := leaf(g, ir.Break)
	b := leaf(g, ir.Done)

	_, err := NewBlock(ctx, g, []ir.CompID{a, b}, false)
	assert.ErrorIs(t, err, ErrNotLast)

	_, err = NewBlock(ctx, g, []ir.CompID{b, a}, false)
	require.NoError(t, err)

	_, err = NewBlock(ctx, g, []ir.CompID{b}, false)
	assert.ErrorIs(t, err, ErrOwned)

	c := leaf(g, ir.Done)
	g.MakeEntry(c, ir.Nil)

	_, err = NewBlock(ctx, g, []ir.CompID{c}, false)
	assert.ErrorIs(t, err, ErrEntered)
}

func TestDecision(t *testing.T) {
	g := ir.New()

	d := decision(t, g)
	x := g.Comp(d).X.(*ir.Decision)

	assert.Equal(t, []ir.CompID{x.TestBlock, x.Not, x.TrueAnd, x.FalseAnd}, g.Comp(d).Children)
	require.Len(t, g.Comp(d).Exits, 2)

	te := g.ExitByTag(d, ir.TrueTag)
	fe := g.ExitByTag(d, ir.FalseTag)

	en := onlyEntry(t, g, outBuf(g, te))
	assert.Equal(t, g.MainExit(x.TrueAnd), g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.ResultBus(x.TrueAnd)}, depBuses(g, en, g.Comp(outBuf(g, te)).Go))

	en = onlyEntry(t, g, outBuf(g, fe))
	assert.Equal(t, g.MainExit(x.FalseAnd), g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.ResultBus(x.FalseAnd)}, depBuses(g, en, g.Comp(outBuf(g, fe)).Go))

	tdone := g.MainExit(x.TestBlock)
	require.Len(t, g.Exit(tdone).Data, 1)
	cond := g.Exit(tdone).Data[0]

	en = onlyEntry(t, g, x.TrueAnd)
	assert.Equal(t, tdone, g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.DoneBus(tdone)}, depBuses(g, en, g.Comp(x.TrueAnd).Data[0]))
	assert.Equal(t, []ir.BusID{cond}, depBuses(g, en, g.Comp(x.TrueAnd).Data[1]))

	en = onlyEntry(t, g, x.Not)
	assert.Equal(t, []ir.BusID{cond}, depBuses(g, en, g.Comp(x.Not).Data[0]))

	en = onlyEntry(t, g, x.FalseAnd)
	assert.Equal(t, g.MainExit(x.Not), g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.ResultBus(x.Not)}, depBuses(g, en, g.Comp(x.FalseAnd).Data[1]))

	en = g.Comp(outBuf(g, tdone)).Entries[0]
	assert.Equal(t, []ir.BusID{g.ResultBus(x.Test)}, depBuses(g, en, g.Bus(cond).Peer))

	assert.NoError(t, g.Verify(d))
}

func TestDecisionErrors(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	test := g.NewConstant(value.MustParse("1"))
	other := g.NewConstant(value.MustParse("0"))

	tb, err := NewBlock(ctx, g, []ir.CompID{test}, false)
	require.NoError(t, err)

	_, err = NewDecision(ctx, g, tb, other)
	assert.ErrorIs(t, err, ir.ErrNotChild)

	_, err = NewDecision(ctx, g, test, test)
	assert.ErrorIs(t, err, ErrBadKind)

	wide := g.NewConstant(value.MustParse("10"))

	tb, err = NewBlock(ctx, g, []ir.CompID{wide}, false)
	require.NoError(t, err)

	_, err = NewDecision(ctx, g, tb, wide)
	assert.Error(t, err)
}

func TestBranch(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	d := decision(t, g)
	arm := leaf(g, ir.Done, ir.Return)

	br, err := NewBranch(ctx, g, d, arm, ir.Nil)
	require.NoError(t, err)

	assert.Equal(t, []ir.CompID{d, arm}, g.Comp(br).Children)

	te := g.ExitByTag(d, ir.TrueTag)

	en := onlyEntry(t, g, arm)
	assert.Equal(t, te, g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.DoneBus(te)}, depBuses(g, en, g.Comp(arm).Go))

	require.Len(t, g.Comp(br).Exits, 2)

	done := g.MainExit(br)
	ens := g.Comp(outBuf(g, done)).Entries
	require.Len(t, ens, 2)

	assert.Equal(t, g.MainExit(arm), g.Entry(ens[0]).Driving)
	assert.Equal(t, g.ExitByTag(d, ir.FalseTag), g.Entry(ens[1]).Driving)

	ret := g.ExitByTag(br, ir.Tag{Type: ir.Return})
	en = onlyEntry(t, g, outBuf(g, ret))
	assert.Equal(t, g.ExitByTag(arm, ir.Tag{Type: ir.Return}), g.Entry(en).Driving)

	assert.NoError(t, g.Verify(br))

	_, err = NewBranch(ctx, g, arm, ir.Nil, ir.Nil)
	assert.ErrorIs(t, err, ErrBadKind)
}

func TestLoopBodyDecisionFirst(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	d := decision(t, g)

	inner := leaf(g, ir.Done, ir.Continue, ir.Break)

	body, err := NewBlock(ctx, g, []ir.CompID{inner}, false)
	require.NoError(t, err)

	upd := leaf(g, ir.Done)

	lb, err := NewLoopBody(ctx, g, d, body, upd, true)
	require.NoError(t, err)

	assert.Equal(t, ir.ExitID(ir.Nil), g.ExitByTag(body, ir.Tag{Type: ir.Continue}))
	assert.Len(t, g.Comp(outBuf(g, g.MainExit(body))).Entries, 2)

	en := onlyEntry(t, g, body)
	assert.Equal(t, g.ExitByTag(d, ir.TrueTag), g.Entry(en).Driving)

	en = onlyEntry(t, g, upd)
	assert.Equal(t, g.MainExit(body), g.Entry(en).Driving)

	require.Len(t, g.Comp(lb).Exits, 2)

	fb := g.ExitByTag(lb, ir.FeedbackTag)
	require.NotEqual(t, ir.ExitID(ir.Nil), fb)

	en = onlyEntry(t, g, outBuf(g, fb))
	assert.Equal(t, g.MainExit(upd), g.Entry(en).Driving)

	ens := g.Comp(outBuf(g, g.ExitByTag(lb, ir.CompleteTag))).Entries
	require.Len(t, ens, 2)

	var drivers []ir.ExitID
	for _, en := range ens {
		drivers = append(drivers, g.Entry(en).Driving)
	}

	assert.ElementsMatch(t, []ir.ExitID{g.ExitByTag(d, ir.FalseTag), g.ExitByTag(body, ir.Tag{Type: ir.Break})}, drivers)

	assert.True(t, g.IsIterative(lb))
	assert.NoError(t, g.Verify(lb))
}

func TestLoopBodyDropsUnreachableUpdate(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	d := decision(t, g)
	body := leaf(g, ir.Break)
	upd := leaf(g, ir.Done)

	lb, err := NewLoopBody(ctx, g, d, body, upd, true)
	require.NoError(t, err)

	assert.True(t, g.Comp(upd).Removed)
	assert.Equal(t, ir.CompID(ir.Nil), g.Comp(lb).X.(*ir.LoopBody).Update)

	assert.Equal(t, ir.ExitID(ir.Nil), g.ExitByTag(lb, ir.FeedbackTag))
	assert.False(t, g.IsIterative(lb))
}

func TestLoopBodyDecisionLast(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	d := decision(t, g)
	body := leaf(g, ir.Done)

	_, err := NewLoopBody(ctx, g, d, body, leaf(g, ir.Done), false)
	assert.Error(t, err)

	lb, err := NewLoopBody(ctx, g, d, body, ir.Nil, false)
	require.NoError(t, err)

	en := onlyEntry(t, g, body)
	assert.Equal(t, g.InBufExit(lb), g.Entry(en).Driving)

	en = onlyEntry(t, g, d)
	assert.Equal(t, g.MainExit(body), g.Entry(en).Driving)

	fb := g.ExitByTag(lb, ir.FeedbackTag)
	en = onlyEntry(t, g, outBuf(g, fb))
	assert.Equal(t, g.ExitByTag(d, ir.TrueTag), g.Entry(en).Driving)

	ce := g.ExitByTag(lb, ir.CompleteTag)
	en = onlyEntry(t, g, outBuf(g, ce))
	assert.Equal(t, g.ExitByTag(d, ir.FalseTag), g.Entry(en).Driving)

	assert.NoError(t, g.Verify(lb))
}

func TestLoop(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	init, err := NewBlock(ctx, g, nil, false)
	require.NoError(t, err)

	lb, err := NewLoopBody(ctx, g, decision(t, g), leaf(g, ir.Done), ir.Nil, true)
	require.NoError(t, err)

	lp, err := NewLoop(ctx, g, init, lb)
	require.NoError(t, err)

	x := g.Comp(lp).X.(*ir.Loop)

	require.NotEqual(t, ir.CompID(ir.Nil), x.Control)
	assert.Equal(t, []ir.CompID{init, lb, x.Control}, g.Comp(lp).Children)
	assert.Equal(t, ir.IterationsUnknown, x.Iterations)

	assert.Equal(t, x.InitEntry, g.BodyEntry(lp, ir.EventInit))
	assert.Equal(t, x.FeedbackEntry, g.BodyEntry(lp, ir.EventFeedback))

	assert.Equal(t, g.MainExit(init), g.Entry(x.InitEntry).Driving)
	assert.Equal(t, g.MainExit(x.Control), g.Entry(x.FeedbackEntry).Driving)
	assert.Equal(t, []ir.BusID{g.ResultBus(x.Control)}, depBuses(g, x.FeedbackEntry, g.Comp(lb).Go))

	fb := g.ExitByTag(lb, ir.FeedbackTag)
	en := onlyEntry(t, g, x.Control)
	assert.Equal(t, fb, g.Entry(en).Driving)
	assert.Equal(t, []ir.BusID{g.DoneBus(fb)}, depBuses(g, en, g.Comp(x.Control).Data[0]))

	require.Len(t, g.Comp(lp).Exits, 1)

	done := g.MainExit(lp)
	en = onlyEntry(t, g, outBuf(g, done))
	assert.Equal(t, g.ExitByTag(lb, ir.CompleteTag), g.Entry(en).Driving)
	assert.True(t, g.Exit(done).Latency.IsOpen())

	assert.False(t, g.IsBalanceable(lp))
	assert.NoError(t, g.Verify(lp))
}

func TestLoopRemoveBody(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	lb, err := NewLoopBody(ctx, g, decision(t, g), leaf(g, ir.Done), ir.Nil, true)
	require.NoError(t, err)

	acc := g.MakeDataPort(lb, tp.Unsigned(4))
	next := g.MakeDataBus(g.ExitByTag(lb, ir.FeedbackTag), tp.Unsigned(4))

	lp, err := NewLoop(ctx, g, ir.Nil, lb)
	require.NoError(t, err)

	x := g.Comp(lp).X.(*ir.Loop)
	require.NotEqual(t, ir.EntryID(ir.Nil), x.InitEntry)
	require.NotEqual(t, ir.EntryID(ir.Nil), x.FeedbackEntry)

	err = g.RemoveComponent(lp, lb)
	require.NoError(t, err)

	assert.Equal(t, ir.CompID(ir.Nil), x.Body)
	assert.Equal(t, ir.EntryID(ir.Nil), g.BodyEntry(lp, ir.EventInit))
	assert.Equal(t, ir.EntryID(ir.Nil), g.BodyEntry(lp, ir.EventFeedback))

	_, err = AddLoopDataRegister(ctx, g, lp, acc, ir.Nil, next)
	assert.ErrorIs(t, err, ErrNotIterative)
}

func TestDecisionRemoveTest(t *testing.T) {
	g := ir.New()

	d := decision(t, g)
	x := g.Comp(d).X.(*ir.Decision)

	test := x.Test
	require.NotEqual(t, ir.CompID(ir.Nil), test)

	err := g.RemoveComponent(x.TestBlock, test)
	require.NoError(t, err)

	assert.Equal(t, ir.CompID(ir.Nil), x.Test)
	assert.True(t, g.Comp(test).Removed)
}

func TestLoopWithoutFeedback(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	lb, err := NewLoopBody(ctx, g, decision(t, g), leaf(g, ir.Break), ir.Nil, true)
	require.NoError(t, err)

	lp, err := NewLoop(ctx, g, ir.Nil, lb)
	require.NoError(t, err)

	x := g.Comp(lp).X.(*ir.Loop)

	assert.Equal(t, ir.CompID(ir.Nil), x.Control)
	assert.Equal(t, ir.EntryID(ir.Nil), x.FeedbackEntry)
	assert.Equal(t, g.InBufExit(lp), g.Entry(x.InitEntry).Driving)

	_, err = AddLoopDataRegister(ctx, g, lp, ir.Nil, ir.Nil, ir.Nil)
	assert.ErrorIs(t, err, ErrNotIterative)
}

func TestLoopDataRegister(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	init, err := NewBlock(ctx, g, nil, false)
	require.NoError(t, err)

	lb, err := NewLoopBody(ctx, g, decision(t, g), leaf(g, ir.Done), ir.Nil, true)
	require.NoError(t, err)

	port := g.MakeDataPort(lb, tp.Unsigned(8))
	fbBus := g.MakeDataBus(g.ExitByTag(lb, ir.FeedbackTag), tp.Unsigned(8))
	initBus := g.MakeDataBus(g.MainExit(init), tp.Unsigned(8))

	lp, err := NewLoop(ctx, g, init, lb)
	require.NoError(t, err)

	x := g.Comp(lp).X.(*ir.Loop)

	_, err = AddLoopDataRegister(ctx, g, lp, g.Comp(lb).Go, initBus, fbBus)
	assert.Error(t, err)

	_, err = AddLoopDataRegister(ctx, g, lp, port, initBus, initBus)
	assert.Error(t, err)

	reg, err := AddLoopDataRegister(ctx, g, lp, port, initBus, fbBus)
	require.NoError(t, err)

	assert.Equal(t, []ir.CompID{reg}, x.Regs)
	assert.Equal(t, lp, g.Comp(reg).Owner)

	assert.Equal(t, []ir.BusID{initBus}, depBuses(g, x.InitEntry, port))
	assert.Equal(t, []ir.BusID{g.ResultBus(reg)}, depBuses(g, x.FeedbackEntry, port))

	en := onlyEntry(t, g, reg)
	assert.Equal(t, []ir.BusID{fbBus}, depBuses(g, en, g.Comp(reg).Data[0]))
	assert.Equal(t, 8, g.Bus(g.ResultBus(reg)).Value.Size())

	assert.NoError(t, g.Verify(lp))
}
