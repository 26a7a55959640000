package compiler

import (
	"context"

	"tlog.app/go/errors"

	"github.com/orcc/xronos-sub001/compiler/front"
	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/tp"
	"github.com/orcc/xronos-sub001/compiler/value"
)

// Demo builds a small design: an 8-bit input masked by a constant
// and widened, a branch on a constant condition and a loop carrying
// an 8-bit value through a data register.
func Demo(ctx context.Context, g *ir.Graph) (top ir.CompID, err error) {
	mask := g.NewConstant(value.MustParse("00000101"))
	and := g.NewBinaryOp(ir.KindAndOp, tp.Unsigned(8), tp.Unsigned(8))
	wide := g.NewCastOp(tp.Unsigned(8), tp.Unsigned(16))

	br, err := demoBranch(ctx, g)
	if err != nil {
		return ir.Nil, errors.Wrap(err, "branch")
	}

	lp, err := demoLoop(ctx, g)
	if err != nil {
		return ir.Nil, errors.Wrap(err, "loop")
	}

	top, err = front.NewBlock(ctx, g, []ir.CompID{mask, and, wide, br, lp}, false)
	if err != nil {
		return ir.Nil, errors.Wrap(err, "top")
	}

	g.Comp(top).Name = "demo"

	g.MakeDataPort(top, tp.Unsigned(8))

	en := g.Comp(and).Entries[0]
	g.AddDependency(en, g.Comp(and).Data[0], ir.Data, g.InBufData(top, 0))
	g.AddDependency(en, g.Comp(and).Data[1], ir.Data, g.ResultBus(mask))

	en = g.Comp(wide).Entries[0]
	g.AddDependency(en, g.Comp(wide).Data[0], ir.Data, g.ResultBus(and))

	return top, nil
}

func demoDecision(ctx context.Context, g *ir.Graph, lit string) (ir.CompID, error) {
	test := g.NewConstant(value.MustParse(lit))

	tb, err := front.NewBlock(ctx, g, []ir.CompID{test}, false)
	if err != nil {
		return ir.Nil, err
	}

	return front.NewDecision(ctx, g, tb, test)
}

func demoBranch(ctx context.Context, g *ir.Graph) (ir.CompID, error) {
	d, err := demoDecision(ctx, g, "1")
	if err != nil {
		return ir.Nil, errors.Wrap(err, "decision")
	}

	arm, err := front.NewBlock(ctx, g, []ir.CompID{g.NewNoOp()}, false)
	if err != nil {
		return ir.Nil, errors.Wrap(err, "arm")
	}

	return front.NewBranch(ctx, g, d, arm, ir.Nil)
}

func demoLoop(ctx context.Context, g *ir.Graph) (ir.CompID, error) {
	d, err := demoDecision(ctx, g, "0")
	if err != nil {
		return ir.Nil, errors.Wrap(err, "decision")
	}

	body, err := front.NewBlock(ctx, g, nil, false)
	if err != nil {
		return ir.Nil, errors.Wrap(err, "body")
	}

	lb, err := front.NewLoopBody(ctx, g, d, body, ir.Nil, true)
	if err != nil {
		return ir.Nil, errors.Wrap(err, "loop body")
	}

	init, err := front.NewBlock(ctx, g, nil, false)
	if err != nil {
		return ir.Nil, errors.Wrap(err, "init")
	}

	acc := g.MakeDataPort(lb, tp.Unsigned(8))
	next := g.MakeDataBus(g.ExitByTag(lb, ir.FeedbackTag), tp.Unsigned(8))
	start := g.MakeDataBus(g.MainExit(init), tp.Unsigned(8))

	lp, err := front.NewLoop(ctx, g, init, lb)
	if err != nil {
		return ir.Nil, err
	}

	_, err = front.AddLoopDataRegister(ctx, g, lp, acc, start, next)
	if err != nil {
		return ir.Nil, errors.Wrap(err, "register")
	}

	return lp, nil
}
