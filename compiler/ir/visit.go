package ir

import (
	"tlog.app/go/errors"
)

type (
	// Visitor has one method per component kind.
	// Module methods get an enter continuation visiting the children in order;
	// not calling it skips the subtree.
	Visitor interface {
		InBuf(g *Graph, c CompID) error
		OutBuf(g *Graph, c CompID) error
		Constant(g *Graph, c CompID) error
		NoOp(g *Graph, c CompID) error
		And(g *Graph, c CompID) error
		Or(g *Graph, c CompID) error
		Not(g *Graph, c CompID) error
		AndOp(g *Graph, c CompID) error
		OrOp(g *Graph, c CompID) error
		XorOp(g *Graph, c CompID) error
		ComplementOp(g *Graph, c CompID) error
		CastOp(g *Graph, c CompID) error
		Reg(g *Graph, c CompID) error

		Module(g *Graph, c CompID, enter func() error) error
		Block(g *Graph, c CompID, enter func() error) error
		Decision(g *Graph, c CompID, enter func() error) error
		Branch(g *Graph, c CompID, enter func() error) error
		LoopBody(g *Graph, c CompID, enter func() error) error
		Loop(g *Graph, c CompID, enter func() error) error
	}

	// DefaultVisitor descends into every module and does nothing else.
	DefaultVisitor struct{}

	visitFunc func(v Visitor, g *Graph, c CompID) error
)

var visitTable [numKinds]visitFunc

func init() {
	visitTable = [numKinds]visitFunc{
		KindInBuf:        func(v Visitor, g *Graph, c CompID) error { return v.InBuf(g, c) },
		KindOutBuf:       func(v Visitor, g *Graph, c CompID) error { return v.OutBuf(g, c) },
		KindConstant:     func(v Visitor, g *Graph, c CompID) error { return v.Constant(g, c) },
		KindNoOp:         func(v Visitor, g *Graph, c CompID) error { return v.NoOp(g, c) },
		KindAnd:          func(v Visitor, g *Graph, c CompID) error { return v.And(g, c) },
		KindOr:           func(v Visitor, g *Graph, c CompID) error { return v.Or(g, c) },
		KindNot:          func(v Visitor, g *Graph, c CompID) error { return v.Not(g, c) },
		KindAndOp:        func(v Visitor, g *Graph, c CompID) error { return v.AndOp(g, c) },
		KindOrOp:         func(v Visitor, g *Graph, c CompID) error { return v.OrOp(g, c) },
		KindXorOp:        func(v Visitor, g *Graph, c CompID) error { return v.XorOp(g, c) },
		KindComplementOp: func(v Visitor, g *Graph, c CompID) error { return v.ComplementOp(g, c) },
		KindCastOp:       func(v Visitor, g *Graph, c CompID) error { return v.CastOp(g, c) },
		KindReg:          func(v Visitor, g *Graph, c CompID) error { return v.Reg(g, c) },
		KindModule:       func(v Visitor, g *Graph, c CompID) error { return v.Module(g, c, enter(v, g, c)) },
		KindBlock:        func(v Visitor, g *Graph, c CompID) error { return v.Block(g, c, enter(v, g, c)) },
		KindDecision:     func(v Visitor, g *Graph, c CompID) error { return v.Decision(g, c, enter(v, g, c)) },
		KindBranch:       func(v Visitor, g *Graph, c CompID) error { return v.Branch(g, c, enter(v, g, c)) },
		KindLoopBody:     func(v Visitor, g *Graph, c CompID) error { return v.LoopBody(g, c, enter(v, g, c)) },
		KindLoop:         func(v Visitor, g *Graph, c CompID) error { return v.Loop(g, c, enter(v, g, c)) },
	}
}

// Accept dispatches c to the visitor method of its kind.
func Accept(v Visitor, g *Graph, c CompID) error {
	k := g.Comps[c].Kind

	if k >= numKinds || visitTable[k] == nil {
		return errors.New("no visit method for kind %v", k)
	}

	return visitTable[k](v, g, c)
}

func enter(v Visitor, g *Graph, c CompID) func() error {
	return func() error {
		for _, ch := range g.Members(c) {
			err := Accept(v, g, ch)
			if err != nil {
				return errors.Wrap(err, "%v", g.Describe(ch))
			}
		}

		return nil
	}
}

// Members returns everything inside module c in visiting order:
// the InBuf, the children, then the OutBufs.
func (g *Graph) Members(c CompID) []CompID {
	x := g.Comps[c]
	if !x.Kind.IsModule() {
		return nil
	}

	r := make([]CompID, 0, len(x.Children)+len(x.Exits)+1)

	r = append(r, x.InBuf)
	r = append(r, x.Children...)
	r = append(r, g.OutBufs(c)...)

	return r
}

func (DefaultVisitor) InBuf(g *Graph, c CompID) error        { return nil }
func (DefaultVisitor) OutBuf(g *Graph, c CompID) error       { return nil }
func (DefaultVisitor) Constant(g *Graph, c CompID) error     { return nil }
func (DefaultVisitor) NoOp(g *Graph, c CompID) error         { return nil }
func (DefaultVisitor) And(g *Graph, c CompID) error          { return nil }
func (DefaultVisitor) Or(g *Graph, c CompID) error           { return nil }
func (DefaultVisitor) Not(g *Graph, c CompID) error          { return nil }
func (DefaultVisitor) AndOp(g *Graph, c CompID) error        { return nil }
func (DefaultVisitor) OrOp(g *Graph, c CompID) error         { return nil }
func (DefaultVisitor) XorOp(g *Graph, c CompID) error        { return nil }
func (DefaultVisitor) ComplementOp(g *Graph, c CompID) error { return nil }
func (DefaultVisitor) CastOp(g *Graph, c CompID) error       { return nil }
func (DefaultVisitor) Reg(g *Graph, c CompID) error          { return nil }

func (DefaultVisitor) Module(g *Graph, c CompID, enter func() error) error   { return enter() }
func (DefaultVisitor) Block(g *Graph, c CompID, enter func() error) error    { return enter() }
func (DefaultVisitor) Decision(g *Graph, c CompID, enter func() error) error { return enter() }
func (DefaultVisitor) Branch(g *Graph, c CompID, enter func() error) error   { return enter() }
func (DefaultVisitor) LoopBody(g *Graph, c CompID, enter func() error) error { return enter() }
func (DefaultVisitor) Loop(g *Graph, c CompID, enter func() error) error     { return enter() }

// Walk visits c and everything inside it in pre-order calling f.
func (g *Graph) Walk(c CompID, f func(c CompID) bool) {
	if !f(c) {
		return
	}

	for _, ch := range g.Members(c) {
		g.Walk(ch, f)
	}
}
