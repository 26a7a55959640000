package prop

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/value"
)

// ForcePort locks the value of p. The new value must not be wider
// than the current one. Any later push into p fails with ErrForced.
func ForcePort(g *ir.Graph, p ir.PortID, v *value.Value) error {
	x := g.Port(p)

	switch {
	case x.Value == nil:
		return errors.New("force port %d: no value", p)
	case v.Size() > x.Value.Size():
		return errors.Wrap(value.SizeMismatchError{Want: x.Value.Size(), Got: v.Size()}, "force port %d", p)
	case v.IsSigned() != x.Value.IsSigned():
		return errors.Wrap(value.ErrSignMismatch, "force port %d", p)
	}

	x.Value = v
	x.Forced = true

	return nil
}

// ForceBus is ForcePort for buses.
func ForceBus(g *ir.Graph, b ir.BusID, v *value.Value) error {
	x := g.Bus(b)

	switch {
	case x.Value == nil:
		return errors.New("force bus %d: no value", b)
	case v.Size() > x.Value.Size():
		return errors.Wrap(value.SizeMismatchError{Want: x.Value.Size(), Got: v.Size()}, "force bus %d", b)
	case v.IsSigned() != x.Value.IsSigned():
		return errors.Wrap(value.ErrSignMismatch, "force bus %d", b)
	}

	x.Value = v
	x.Forced = true

	return nil
}

// Finalize forces every sized terminal under root to its compacted width.
// It returns the number of terminals that got narrower.
func Finalize(ctx context.Context, g *ir.Graph, root ir.CompID) (narrowed int, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "finalize", "root", g.Describe(root))
	defer tr.Finish("err", &err)

	g.Walk(root, func(c ir.CompID) bool {
		for _, p := range g.PortsOf(c) {
			x := g.Port(p)
			if x.Value == nil || x.Forced {
				continue
			}

			n := x.Value.CompactedSize()
			if n < x.Value.Size() {
				narrowed++
			}

			if err = ForcePort(g, p, x.Value.Narrow(n)); err != nil {
				return false
			}
		}

		for _, b := range g.BusesOf(c) {
			x := g.Bus(b)
			if x.Value == nil || x.Forced {
				continue
			}

			n := x.Value.CompactedSize()
			if n < x.Value.Size() {
				narrowed++

				tr.V("finalize").Printw("narrow bus", "bus", b, "comp", g.Describe(c), "from", x.Value.Size(), "to", n)
			}

			if err = ForceBus(g, b, x.Value.Narrow(n)); err != nil {
				return false
			}
		}

		return true
	})

	return narrowed, err
}
