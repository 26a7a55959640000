package prop

import (
	"tlog.app/go/errors"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/value"
)

// opaque reports whether module m hides its internals:
// only constants cross the boundary of a root module.
func opaque(g *ir.Graph, m ir.CompID) bool {
	return g.Comp(m).Owner == ir.Nil
}

func inBufForward(g *ir.Graph, c ir.CompID) (mod bool, err error) {
	op := opaque(g, g.Comp(c).Owner)

	for _, b := range g.BusesOf(c) {
		x := g.Bus(b)
		if x.Peer == ir.Nil {
			continue
		}

		pushed := g.Port(x.Peer).Value
		if pushed == nil {
			continue
		}

		if x.Forced {
			return mod, ErrForced
		}

		if x.Value == nil {
			x.Value = value.New(pushed.Size(), pushed.IsSigned())
			mod = true
		}

		if err = x.Value.Fits(pushed); err != nil {
			return mod, errors.Wrap(err, "bus %d", b)
		}

		if pushAcross(x.Value, pushed, op) {
			mod = true
		}
	}

	return mod, nil
}

func inBufBackward(g *ir.Graph, c ir.CompID) (mod bool, err error) {
	for _, b := range g.BusesOf(c) {
		x := g.Bus(b)
		if x.Peer == ir.Nil || x.Value == nil {
			continue
		}

		m, err := pushPortBackward(g, x.Peer, x.Value)
		if err != nil {
			return mod, err
		}

		mod = mod || m
	}

	return mod, nil
}

func outBufForward(g *ir.Graph, c ir.CompID) (mod bool, err error) {
	op := opaque(g, g.Comp(c).Owner)
	comp := g.Comp(c)

	for _, p := range g.PortsOf(c) {
		if p == comp.Clock || p == comp.Reset {
			continue
		}

		x := g.Port(p)
		if x.Peer == ir.Nil || x.Value == nil {
			continue
		}

		peer := g.Bus(x.Peer)

		if peer.Forced {
			return mod, ErrForced
		}

		if peer.Value == nil {
			peer.Value = value.New(x.Value.Size(), x.Value.IsSigned())
			mod = true
		}

		if err = peer.Value.Fits(x.Value); err != nil {
			return mod, errors.Wrap(err, "bus %d", x.Peer)
		}

		if pushAcross(peer.Value, x.Value, op) {
			mod = true
		}

		// replicate the known MSB over the upper bits
		pv := peer.Value

		if cs := x.Value.CompactedSize(); cs != pv.CompactedSize() && cs <= pv.Size() {
			msb := pv.Bit(cs - 1)

			for i := cs; i < pv.Size(); i++ {
				if !pv.Bit(i).Equal(msb) {
					pv.SetBit(i, msb)
					mod = true
				}
			}
		}
	}

	return mod, nil
}

func outBufBackward(g *ir.Graph, c ir.CompID) (mod bool, err error) {
	for _, p := range g.PortsOf(c) {
		x := g.Port(p)
		if x.Peer == ir.Nil {
			continue
		}

		m, err := pushPortBackward(g, p, g.Bus(x.Peer).Value)
		if err != nil {
			return mod, err
		}

		mod = mod || m
	}

	return mod, nil
}

func constantForward(g *ir.Graph, c ir.CompID) (bool, error) {
	k := g.Comp(c).X.(*ir.Const)

	return pushBusForward(g, g.ResultBus(c), k.Value)
}

func noOpForward(g *ir.Graph, c ir.CompID) (mod bool, err error) {
	ports, buses := noOpPairs(g, c)

	for i, p := range ports {
		m, err := pushBusForward(g, buses[i], g.Port(p).Value)
		if err != nil {
			return mod, err
		}

		mod = mod || m
	}

	return mod, nil
}

// noOpBackward marks an input bit don't care if its output copy
// is unused or known to be constant.
func noOpBackward(g *ir.Graph, c ir.CompID) (mod bool, err error) {
	ports, buses := noOpPairs(g, c)

	for i, p := range ports {
		pv := g.Port(p).Value
		bv := g.Bus(buses[i]).Value

		if pv == nil || bv == nil || pv.IsConstant() {
			continue
		}

		back := value.New(pv.Size(), pv.IsSigned())

		for j := 0; j < back.Size() && j < bv.Size(); j++ {
			if b := bv.Bit(j); !b.Care || b.IsConstant() {
				back.SetBit(j, value.DontCare)
			}
		}

		m, err := pushPortBackward(g, p, back)
		if err != nil {
			return mod, err
		}

		mod = mod || m
	}

	return mod, nil
}

func noOpPairs(g *ir.Graph, c ir.CompID) ([]ir.PortID, []ir.BusID) {
	e := g.MainExit(c)
	if e == ir.Nil {
		return nil, nil
	}

	ports := g.Comp(c).Data
	buses := g.Exit(e).Data

	if len(ports) != len(buses) {
		return nil, nil
	}

	return ports, buses
}

// inputs returns values of the data ports of c or nil if some is not sized.
func inputs(g *ir.Graph, c ir.CompID) []*value.Value {
	data := g.Comp(c).Data
	r := make([]*value.Value, len(data))

	for i, p := range data {
		r[i] = g.Port(p).Value
		if r[i] == nil {
			return nil
		}
	}

	return r
}

func andForward(g *ir.Graph, c ir.CompID) (bool, error) {
	return logicForward(g, c, value.Off)
}

func orForward(g *ir.Graph, c ir.CompID) (bool, error) {
	return logicForward(g, c, value.On)
}

// logicForward computes a 1-bit and (dominant Off) or or (dominant On).
// Any dominant input decides the result, all don't care inputs give don't care,
// all inputs equal to the identity give the identity, anything else is care.
func logicForward(g *ir.Graph, c ir.CompID, dominant value.Const) (bool, error) {
	in := inputs(g, c)
	if in == nil {
		return false, nil
	}

	identity := value.On
	if dominant == value.On {
		identity = value.Off
	}

	var dom, dc, ident int

	for _, v := range in {
		b := v.Bit(0)

		switch {
		case !b.Care:
			dc++
		case b.Const == dominant:
			dom++
		case b.Const == identity:
			ident++
		}
	}

	r := value.New(1, false)

	switch {
	case dom != 0:
		r.SetBit(0, value.ConstBit(dominant == value.On))
	case dc == len(in):
		r.SetBit(0, value.DontCare)
	case ident == len(in):
		r.SetBit(0, value.ConstBit(identity == value.On))
	}

	return pushBusForward(g, g.ResultBus(c), r)
}

// logicBackward makes every input don't care if the result is.
func logicBackward(g *ir.Graph, c ir.CompID) (mod bool, err error) {
	rv := g.Bus(g.ResultBus(c)).Value
	if rv == nil {
		return false, nil
	}

	for _, p := range g.Comp(c).Data {
		m, err := pushPortBackward(g, p, rv)
		if err != nil {
			return mod, err
		}

		mod = mod || m
	}

	return mod, nil
}

// notForward inverts every bit of the single input.
func notForward(g *ir.Graph, c ir.CompID) (bool, error) {
	in := inputs(g, c)
	if in == nil {
		return false, nil
	}

	v := in[0]
	r := value.New(v.Size(), v.IsSigned())

	for i := 0; i < v.Size(); i++ {
		r.SetBit(i, v.Bit(i).Invert())
	}

	return pushBusForward(g, g.ResultBus(c), r)
}

// bitwiseBackward makes input bit i don't care if result bit i is.
func bitwiseBackward(g *ir.Graph, c ir.CompID) (bool, error) {
	return pushPortBackward(g, g.Comp(c).Data[0], g.Bus(g.ResultBus(c)).Value)
}

func binaryForward(op func(a, b value.Bit) value.Bit) func(g *ir.Graph, c ir.CompID) (bool, error) {
	return func(g *ir.Graph, c ir.CompID) (bool, error) {
		in := inputs(g, c)
		if in == nil {
			return false, nil
		}

		rb := g.ResultBus(c)
		if g.Bus(rb).Value == nil {
			return false, nil
		}

		l, r := in[0], in[1]
		res := value.New(g.Bus(rb).Value.Size(), g.Bus(rb).Value.IsSigned())

		for i := 0; i < res.Size(); i++ {
			res.SetBit(i, op(extended(l, i), extended(r, i)))
		}

		return pushBusForward(g, rb, res)
	}
}

// binaryBackward makes an input bit don't care if the result bit is don't care
// or the other operand bit is the dominant constant.
// The input MSB stays care while any result bit it extends to is care.
func binaryBackward(dominant value.Const) func(g *ir.Graph, c ir.CompID) (bool, error) {
	return func(g *ir.Graph, c ir.CompID) (mod bool, err error) {
		in := inputs(g, c)
		rv := g.Bus(g.ResultBus(c)).Value

		if in == nil || rv == nil {
			return false, nil
		}

		data := g.Comp(c).Data

		for k, p := range data {
			pv := in[k]
			other := in[1-k]

			back := value.New(pv.Size(), pv.IsSigned())

			for i := 0; i < back.Size(); i++ {
				care := false

				switch {
				case i >= rv.Size():
				case i == back.Size()-1:
					for j := i; j < rv.Size(); j++ {
						care = care || rv.IsCare(j)
					}
				default:
					care = rv.IsCare(i)
				}

				if dominant != value.NotConstant && extended(other, i).Const == dominant {
					care = false
				}

				if !care {
					back.SetBit(i, value.DontCare)
				}
			}

			m, err := pushPortBackward(g, p, back)
			if err != nil {
				return mod, err
			}

			mod = mod || m
		}

		return mod, nil
	}
}

func andBit(a, b value.Bit) value.Bit {
	switch {
	case a.Const == value.Off && a.Care, b.Const == value.Off && b.Care:
		return value.Zero
	case !a.Care || !b.Care:
		return value.DontCare
	case a.Const == value.On:
		return b
	case b.Const == value.On:
		return a
	case a.Equal(b):
		return a
	default:
		return value.Care
	}
}

func orBit(a, b value.Bit) value.Bit {
	switch {
	case a.Const == value.On && a.Care, b.Const == value.On && b.Care:
		return value.One
	case !a.Care || !b.Care:
		return value.DontCare
	case a.Const == value.Off:
		return b
	case b.Const == value.Off:
		return a
	case a.Equal(b):
		return a
	default:
		return value.Care
	}
}

func xorBit(a, b value.Bit) value.Bit {
	switch {
	case !a.Care || !b.Care:
		return value.DontCare
	case a.Const == value.Off:
		return b
	case b.Const == value.Off:
		return a
	case a.Const == value.On:
		return b.Invert()
	case b.Const == value.On:
		return a.Invert()
	case !a.IsGlobal() && a.Equal(b):
		return value.Zero
	default:
		return value.Care
	}
}

// extended returns bit i of v, extending it by its sign or by zero.
func extended(v *value.Value, i int) value.Bit {
	if i < v.Size() {
		return v.Bit(i)
	}

	if v.IsSigned() {
		return v.Bit(v.Size() - 1)
	}

	return value.Zero
}

func castForward(g *ir.Graph, c ir.CompID) (bool, error) {
	x := g.Comp(c).X.(*ir.Cast)

	in := inputs(g, c)
	if in == nil {
		return false, nil
	}

	r := value.New(x.Size, x.Signed)

	for i := 0; i < r.Size(); i++ {
		r.SetBit(i, extended(in[0], i))
	}

	return pushBusForward(g, g.ResultBus(c), r)
}

// castBackward follows positions. Input bits past the result are don't care.
// The input MSB stays care while any result bit it may extend to is care,
// unless the cast is unsigned.
func castBackward(g *ir.Graph, c ir.CompID) (bool, error) {
	x := g.Comp(c).X.(*ir.Cast)

	in := inputs(g, c)
	rv := g.Bus(g.ResultBus(c)).Value

	if in == nil || rv == nil {
		return false, nil
	}

	ps, rs := in[0].Size(), rv.Size()
	back := value.New(ps, in[0].IsSigned())

	for i := 0; i < ps-1; i++ {
		if i >= rs || !rv.IsCare(i) {
			back.SetBit(i, value.DontCare)
		}
	}

	msb := false

	switch {
	case ps > rs:
	case !x.Signed:
		msb = rv.IsCare(ps - 1)
	default:
		for i := ps - 1; i < rs; i++ {
			msb = msb || rv.IsCare(i)
		}
	}

	if !msb {
		back.SetBit(ps-1, value.DontCare)
	}

	return pushPortBackward(g, g.Comp(c).Data[0], back)
}

// regForward merges the initial value with the input, keeps only
// constant bits across the clock edge and replicates the known MSB
// of the output above the compacted width.
func regForward(g *ir.Graph, c ir.CompID) (bool, error) {
	x := g.Comp(c).X.(*ir.Reg)

	in := inputs(g, c)
	if in == nil {
		return false, nil
	}

	v := in[0]

	if x.Init != nil {
		m := value.New(v.Size(), v.IsSigned())

		for i := 0; i < m.Size(); i++ {
			if a, b := v.Bit(i), extended(x.Init, i); a.Equal(b) {
				m.SetBit(i, a)
			}
		}

		v = m
	}

	min := v.CompactedSize()
	r := v.Generic()

	rb := g.ResultBus(c)

	if cur := g.Bus(rb).Value; cur != nil && min < r.Size() {
		msb := cur.Bit(min - 1)

		for i := min; i < r.Size(); i++ {
			r.SetBit(i, msb)
		}
	}

	return pushBusForward(g, rb, r)
}

func regBackward(g *ir.Graph, c ir.CompID) (bool, error) {
	return pushPortBackward(g, g.Comp(c).Data[0], g.Bus(g.ResultBus(c)).Value)
}
