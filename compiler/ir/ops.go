package ir

import (
	"tlog.app/go/loc"

	"github.com/orcc/xronos-sub001/compiler/tp"
	"github.com/orcc/xronos-sub001/compiler/value"
)

// NewConstant makes a component producing v on its result bus.
func (g *Graph) NewConstant(v *value.Value) CompID {
	c := g.newComponent(KindConstant, "", loc.Caller(1))
	g.Comps[c].X = &Const{Value: v.Copy()}

	e := g.MakeExit(c, Done, "")
	b := g.MakeDataBus(e, tp.Int{Bits: int16(v.Size()), Signed: v.IsSigned()})

	g.Buses[b].Value = v.Copy()

	return c
}

// NewNoOp makes a pass through component: data port i drives data bus i.
func (g *Graph) NewNoOp(types ...tp.Int) CompID {
	c := g.newComponent(KindNoOp, "", loc.Caller(1))
	e := g.MakeExit(c, Done, "")

	for _, t := range types {
		g.MakeDataPort(c, t)
		g.MakeDataBus(e, t)
	}

	return c
}

// NewAnd makes an n input 1-bit logical and.
func (g *Graph) NewAnd(n int) CompID {
	return g.newLogic(KindAnd, n, loc.Caller(1))
}

// NewOr makes an n input 1-bit logical or.
func (g *Graph) NewOr(n int) CompID {
	return g.newLogic(KindOr, n, loc.Caller(1))
}

func (g *Graph) NewNot() CompID {
	return g.newLogic(KindNot, 1, loc.Caller(1))
}

func (g *Graph) newLogic(k Kind, n int, from loc.PC) CompID {
	c := g.newComponent(k, "", from)

	for i := 0; i < n; i++ {
		g.MakeDataPort(c, tp.Bool)
	}

	g.MakeExit(c, Done, "", tp.Bool)

	return c
}

// NewBinaryOp makes a bitwise AndOp, OrOp or XorOp.
// The result is as wide as the wider operand and signed only if both are.
func (g *Graph) NewBinaryOp(k Kind, l, r tp.Int) CompID {
	switch k {
	case KindAndOp, KindOrOp, KindXorOp:
	default:
		panic(k)
	}

	c := g.newComponent(k, "", loc.Caller(1))

	g.MakeDataPort(c, l)
	g.MakeDataPort(c, r)

	res := tp.Int{Bits: l.Bits, Signed: l.Signed && r.Signed}
	if r.Bits > res.Bits {
		res.Bits = r.Bits
	}

	g.MakeExit(c, Done, "", res)

	return c
}

func (g *Graph) NewComplementOp(t tp.Int) CompID {
	c := g.newComponent(KindComplementOp, "", loc.Caller(1))

	g.MakeDataPort(c, t)
	g.MakeExit(c, Done, "", t)

	return c
}

// NewCastOp makes a component converting in to out by truncation or extension.
func (g *Graph) NewCastOp(in, out tp.Int) CompID {
	c := g.newComponent(KindCastOp, "", loc.Caller(1))
	g.Comps[c].X = &Cast{Size: out.Size(), Signed: out.Signed}

	g.MakeDataPort(c, in)
	g.MakeExit(c, Done, "", out)

	return c
}

// NewReg makes a register. Init may be nil.
func (g *Graph) NewReg(t tp.Int, init *value.Value) CompID {
	c := g.newComponent(KindReg, "", loc.Caller(1))

	x := &Reg{}
	if init != nil {
		x.Init = init.Copy()
	}

	g.Comps[c].X = x

	g.MakeDataPort(c, t)
	e := g.MakeExit(c, Done, "", t)
	g.Exits[e].Latency = LatencyOne

	return c
}
