package prop

import (
	"tlog.app/go/errors"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/value"
)

// derive computes the value reaching p: the value of its physical bus
// or the union over all dependencies of all entries of its owner.
// Complete is false if some dependency bus is not sized yet.
func derive(g *ir.Graph, p ir.PortID) (v *value.Value, complete bool, err error) {
	x := g.Port(p)

	if x.Bus != ir.Nil {
		v = g.Bus(x.Bus).Value
		return v, v != nil, nil
	}

	complete = true

	var vals []*value.Value

	for _, d := range g.AllDeps(p) {
		bv := g.Bus(g.Dep(d).Bus).Value
		if bv == nil {
			complete = false
			continue
		}

		vals = append(vals, bv)
	}

	v, err = value.Join(vals...)
	if err != nil {
		return nil, false, err
	}

	return v, complete, nil
}

func pushPortForward(g *ir.Graph, p ir.PortID) (mod bool, err error) {
	x := g.Port(p)

	if x.Forced {
		return false, ErrForced
	}

	derived, complete, err := derive(g, p)
	if err != nil {
		return false, err
	}

	if derived == nil {
		return false, nil
	}

	if x.Value == nil {
		x.Value = value.New(derived.Size(), derived.IsSigned())
		mod = true
	}

	if err = x.Value.Fits(derived); err != nil {
		return mod, err
	}

	if !complete {
		return mod, nil
	}

	cur := x.Value

	for i := 0; i < cur.Size(); i++ {
		if cur.BitEquals(i, derived, i) {
			continue
		}

		if b := cur.Bit(i); !b.Care || b.IsConstant() {
			continue
		}

		cur.SetBit(i, derived.Bit(i))
		mod = true
	}

	return mod, nil
}

// pushPortBackward copies don't care bits of v onto p.
func pushPortBackward(g *ir.Graph, p ir.PortID, v *value.Value) (mod bool, err error) {
	x := g.Port(p)

	if x.Forced {
		return false, errors.Wrap(ErrForced, "port %d", p)
	}

	if x.Value == nil || v == nil {
		return false, nil
	}

	for i := 0; i < v.Size() && i < x.Value.Size(); i++ {
		if !v.IsCare(i) && x.Value.IsCare(i) {
			x.Value.SetBit(i, value.DontCare)
			mod = true
		}
	}

	return mod, nil
}

// pushBusForward merges v into bus b.
// Don't care bits on either side are left alone. Constants and bits owned by
// other buses are taken as is. A generic care bit becomes a bit of b itself.
func pushBusForward(g *ir.Graph, b ir.BusID, v *value.Value) (mod bool, err error) {
	x := g.Bus(b)

	if x.Forced {
		return false, errors.Wrap(ErrForced, "bus %d", b)
	}

	if v == nil {
		return false, nil
	}

	if x.Value == nil {
		x.Value = value.New(v.Size(), v.IsSigned())
		mod = true
	}

	if err = x.Value.Fits(v); err != nil {
		return mod, errors.Wrap(err, "bus %d", b)
	}

	cur := x.Value

	for i := 0; i < cur.Size(); i++ {
		if v.BitEquals(i, cur, i) {
			continue
		}

		in := v.Bit(i)

		switch {
		case !in.Care || !cur.IsCare(i):
		case in.IsConstant():
			cur.SetBit(i, in)
			mod = true
		case in.IsGlobal():
			own := value.OwnedBit(b.Owner(), i)

			if !cur.Bit(i).Equal(own) {
				cur.SetBit(i, own)
				mod = true
			}
		default:
			cur.SetBit(i, in)
			mod = true
		}
	}

	return mod, nil
}

// pushBusBackward turns bits of b don't care where every consumer has them don't care.
// A bus nobody consumes is left as is.
func pushBusBackward(g *ir.Graph, b ir.BusID) (mod bool, err error) {
	x := g.Bus(b)

	if x.Forced {
		return false, errors.Wrap(ErrForced, "bus %d", b)
	}

	if x.Value == nil {
		return false, nil
	}

	ports := g.Consumers(b)
	if len(ports) == 0 {
		return false, nil
	}

	for i := 0; i < x.Value.Size(); i++ {
		if !x.Value.IsCare(i) {
			continue
		}

		var dc, care bool

		for _, p := range ports {
			pv := g.Port(p).Value
			if pv == nil || i >= pv.Size() {
				continue
			}

			if pv.IsCare(i) {
				care = true
				break
			}

			dc = true
		}

		if dc && !care {
			x.Value.SetBit(i, value.DontCare)
			mod = true
		}
	}

	return mod, nil
}

// pushAcross copies bits of v onto the peer value w of a module boundary.
// Across an opaque boundary only constants travel.
func pushAcross(w, v *value.Value, opaque bool) (mod bool) {
	for i := 0; i < v.Size() && i < w.Size(); i++ {
		if v.BitEquals(i, w, i) || !w.IsCare(i) {
			continue
		}

		in := v.Bit(i)

		switch {
		case in.IsConstant():
		case opaque:
			continue
		case in.IsGlobal():
			continue
		}

		w.SetBit(i, in)
		mod = true
	}

	return mod
}
