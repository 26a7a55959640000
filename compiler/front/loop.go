package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/tp"
)

var ErrNotIterative = errors.New("loop is not iterative")

// NewLoopBody makes one iteration of a loop.
//
// Decision first (while, for) runs decision, then body on true and update
// after body. Decision last (do-until) runs body, then decision.
// Continue exits of body go where its done exit goes.
// The iteration exits through FeedbackTag to run again and through
// CompleteTag when the decision fails or body breaks.
func NewLoopBody(ctx context.Context, g *ir.Graph, decision, body, update ir.CompID, decisionFirst bool) (ir.CompID, error) {
	if err := expectKind(g, decision, ir.KindDecision); err != nil {
		return ir.Nil, errors.Wrap(err, "loop body")
	}

	if body == ir.Nil {
		return ir.Nil, errors.New("loop body: no body")
	}

	if update != ir.Nil && !decisionFirst {
		return ir.Nil, errors.New("loop body: update needs decision first")
	}

	if err := check(g, decision, body, update); err != nil {
		return ir.Nil, errors.Wrap(err, "loop body")
	}

	lb := g.NewModule(ir.KindLoopBody, "")

	x := &ir.LoopBody{
		Decision:      decision,
		Body:          body,
		Update:        update,
		DecisionFirst: decisionFirst,
	}

	g.Comp(lb).X = x

	for _, c := range []ir.CompID{decision, body, update} {
		if c != ir.Nil {
			g.AddComponent(lb, c)
		}
	}

	var m ir.ExitMap
	var feedback, complete []ir.ExitID

	// collectBody adds exits of body but the one the next stage is entered from.
	collectBody := func() (next ir.ExitID) {
		next = foldContinue(ctx, g, body)

		for _, e := range g.Comp(body).Exits {
			if e != next {
				m.Add(e, g.Exit(e).Tag)
			}
		}

		return next
	}

	if decisionFirst {
		enter(ctx, g, lb, decision, g.InBufExit(lb), g.GoBus(lb))

		te := g.ExitByTag(decision, ir.TrueTag)
		enter(ctx, g, lb, body, te, g.DoneBus(te))

		next := collectBody()

		switch {
		case next == ir.Nil && update != ir.Nil:
			if err := g.RemoveComponent(lb, update); err != nil {
				return ir.Nil, errors.Wrap(err, "loop body")
			}
		case next == ir.Nil:
		case update != ir.Nil:
			enter(ctx, g, lb, update, next, g.DoneBus(next))
			g.CollectExits(update, &m)
		default:
			feedback = append(feedback, next)
		}

		feedback = append(feedback, m.Remove(ir.CompleteTag)...)

		for _, e := range g.Comp(decision).Exits {
			switch t := g.Exit(e).Tag; t {
			case ir.TrueTag:
			case ir.FalseTag:
				complete = append(complete, e)
			default:
				m.Add(e, t)
			}
		}
	} else {
		enter(ctx, g, lb, body, g.InBufExit(lb), g.GoBus(lb))

		next := collectBody()

		if next == ir.Nil {
			if err := g.RemoveComponent(lb, decision); err != nil {
				return ir.Nil, errors.Wrap(err, "loop body")
			}
		} else {
			enter(ctx, g, lb, decision, next, g.DoneBus(next))

			for _, e := range g.Comp(decision).Exits {
				switch t := g.Exit(e).Tag; t {
				case ir.TrueTag:
					feedback = append(feedback, e)
				case ir.FalseTag:
					complete = append(complete, e)
				default:
					m.Add(e, t)
				}
			}
		}
	}

	complete = append(complete, m.Remove(ir.Tag{Type: ir.Break})...)

	for _, e := range feedback {
		m.Add(e, ir.FeedbackTag)
	}

	for _, e := range complete {
		m.Add(e, ir.CompleteTag)
	}

	g.MergeExits(lb, &m)

	tlog.SpanFromContext(ctx).V("front").Printw("loop body", "comp", g.Describe(lb), "feedback", len(feedback), "complete", len(complete), "decision_first", decisionFirst)

	return lb, nil
}

// NewLoop makes a loop running init once and then body until
// body leaves through its complete exit.
// Init may be Nil. The feedback path goes through a 1-bit control register.
func NewLoop(ctx context.Context, g *ir.Graph, init, body ir.CompID) (ir.CompID, error) {
	if err := expectKind(g, body, ir.KindLoopBody); err != nil {
		return ir.Nil, errors.Wrap(err, "loop")
	}

	if err := check(g, init, body); err != nil {
		return ir.Nil, errors.Wrap(err, "loop")
	}

	if init != ir.Nil && g.MainExit(init) == ir.Nil {
		return ir.Nil, errors.New("loop: init %v never completes", g.Describe(init))
	}

	lp := g.NewModule(ir.KindLoop, "")

	x := &ir.Loop{
		Init:          init,
		Body:          body,
		Control:       g.NewReg(tp.Bool, nil),
		InitEntry:     ir.Nil,
		FeedbackEntry: ir.Nil,
		Iterations:    ir.IterationsUnknown,
	}

	g.Comp(lp).X = x

	for _, c := range []ir.CompID{init, body, x.Control} {
		if c != ir.Nil {
			g.AddComponent(lp, c)
		}
	}

	clock, reset := g.ClockBus(lp), g.ResetBus(lp)

	done := g.MakeExit(lp, ir.Done, "")

	from := g.InBufExit(lp)
	lat := ir.LatencyZero

	if init != ir.Nil {
		enter(ctx, g, lp, init, from, g.GoBus(lp))

		from = g.MainExit(init)
		lat = g.Exit(from).Latency
	}

	x.InitEntry = enter(ctx, g, lp, body, from, g.DoneBus(from))

	if fb := g.ExitByTag(body, ir.FeedbackTag); fb != ir.Nil {
		ctl := g.Comp(x.Control)

		en := enter(ctx, g, lp, x.Control, fb, g.DoneBus(fb))
		g.AddDependency(en, ctl.Data[0], ir.Data, g.DoneBus(fb))

		x.FeedbackEntry = enter(ctx, g, lp, body, g.MainExit(x.Control), g.ResultBus(x.Control))
	} else {
		if err := g.RemoveComponent(lp, x.Control); err != nil {
			return ir.Nil, errors.Wrap(err, "loop")
		}
	}

	if ce := g.ExitByTag(body, ir.CompleteTag); ce != ir.Nil {
		g.AddControlDependencies(g.OutBufEntry(done, ce), clock, reset, g.DoneBus(ce))

		lat = lat.Add(g.Exit(ce).Latency)
	}

	if x.Control != ir.Nil {
		lat = ir.Open(lat.Min)
	}

	g.Exit(done).Latency = lat

	var m ir.ExitMap

	for _, c := range []ir.CompID{init, body} {
		if c == ir.Nil {
			continue
		}

		for _, e := range g.Comp(c).Exits {
			switch t := g.Exit(e).Tag; t {
			case ir.CompleteTag, ir.FeedbackTag:
			default:
				m.Add(e, t)
			}
		}
	}

	g.MergeExits(lp, &m)

	return lp, nil
}

// AddLoopDataRegister carries a value around loop.
// Port, a data port of the loop body, reads init when the body is entered
// from the init block and the register holding feedback on later iterations.
// Feedback must be a data bus of the body feedback exit.
func AddLoopDataRegister(ctx context.Context, g *ir.Graph, loop ir.CompID, port ir.PortID, init, feedback ir.BusID) (ir.CompID, error) {
	if err := expectKind(g, loop, ir.KindLoop); err != nil {
		return ir.Nil, errors.Wrap(err, "loop register")
	}

	lp := g.Comp(loop).X.(*ir.Loop)

	if lp.FeedbackEntry == ir.Nil {
		return ir.Nil, errors.Wrap(ErrNotIterative, "loop register: %v", g.Describe(loop))
	}

	if g.PortOwner(port) != lp.Body || !g.IsDataPort(port) {
		return ir.Nil, errors.New("loop register: port %d is not a data port of %v", port, g.Describe(lp.Body))
	}

	fb := g.ExitByTag(lp.Body, ir.FeedbackTag)
	if g.Bus(feedback).Owner != fb {
		return ir.Nil, errors.New("loop register: bus %d is not on the feedback exit", feedback)
	}

	v := g.Port(port).Value
	if v == nil {
		v = g.Bus(feedback).Value
	}

	if v == nil {
		return ir.Nil, errors.Wrap(ir.ErrBadSize, "loop register: port %d and bus %d unsized", port, feedback)
	}

	reg := g.NewReg(tp.Int{Bits: int16(v.Size()), Signed: v.IsSigned()}, nil)

	g.AddComponent(loop, reg)
	lp.Regs = append(lp.Regs, reg)

	en := enter(ctx, g, loop, reg, fb, g.DoneBus(fb))
	g.AddDependency(en, g.Comp(reg).Data[0], ir.Data, feedback)

	g.AddDependency(lp.InitEntry, port, ir.Data, init)
	g.AddDependency(lp.FeedbackEntry, port, ir.Data, g.ResultBus(reg))

	return reg, nil
}
