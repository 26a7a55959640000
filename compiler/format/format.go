// Package format prints a component tree with the values on its terminals.
package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/value"
)

type (
	dumper struct {
		b []byte
		d int
	}
)

// Dump appends one line per component under root, indented by depth:
// the component, its port values and the bus values of each exit.
func Dump(ctx context.Context, b []byte, g *ir.Graph, root ir.CompID) ([]byte, error) {
	w := &dumper{b: b}

	err := ir.Accept(w, g, root)
	if err != nil {
		return nil, errors.Wrap(err, "dump")
	}

	if tr := tlog.SpanFromContext(ctx); tr.If("dump_graph") {
		tr.Printw("graph", "root", g.Describe(root), "dump", string(w.b[len(b):]))
	}

	return w.b, nil
}

func (w *dumper) line(g *ir.Graph, c ir.CompID) {
	x := g.Comp(c)

	w.b = app(w.b, w.d, "%v", g.Describe(c))

	if len(x.Data) != 0 {
		w.b = append(w.b, " ("...)

		for i, p := range x.Data {
			if i != 0 {
				w.b = append(w.b, ' ')
			}

			w.b = appendValue(w.b, g.Port(p).Value, g.Port(p).Forced)
		}

		w.b = append(w.b, ')')
	}

	for _, e := range x.Exits {
		y := g.Exit(e)

		w.b = app(w.b, 0, " %v", y.Tag)

		if !y.Latency.IsFixed() || y.Latency.Min != 0 {
			w.b = app(w.b, 0, "@%v", y.Latency)
		}

		if len(y.Data) == 0 {
			continue
		}

		w.b = append(w.b, ":"...)

		for _, bus := range y.Data {
			w.b = append(w.b, ' ')
			w.b = appendValue(w.b, g.Bus(bus).Value, g.Bus(bus).Forced)
		}
	}

	if n := len(x.Entries); n > 1 {
		w.b = app(w.b, 0, " entries=%d", n)
	}

	w.b = append(w.b, '\n')
}

func (w *dumper) module(g *ir.Graph, c ir.CompID, enter func() error) error {
	w.line(g, c)

	w.d++
	defer func() { w.d-- }()

	return enter()
}

func (w *dumper) leaf(g *ir.Graph, c ir.CompID) error {
	w.line(g, c)

	return nil
}

func (w *dumper) InBuf(g *ir.Graph, c ir.CompID) error        { return w.leaf(g, c) }
func (w *dumper) OutBuf(g *ir.Graph, c ir.CompID) error       { return w.leaf(g, c) }
func (w *dumper) Constant(g *ir.Graph, c ir.CompID) error     { return w.leaf(g, c) }
func (w *dumper) NoOp(g *ir.Graph, c ir.CompID) error         { return w.leaf(g, c) }
func (w *dumper) And(g *ir.Graph, c ir.CompID) error          { return w.leaf(g, c) }
func (w *dumper) Or(g *ir.Graph, c ir.CompID) error           { return w.leaf(g, c) }
func (w *dumper) Not(g *ir.Graph, c ir.CompID) error          { return w.leaf(g, c) }
func (w *dumper) AndOp(g *ir.Graph, c ir.CompID) error        { return w.leaf(g, c) }
func (w *dumper) OrOp(g *ir.Graph, c ir.CompID) error         { return w.leaf(g, c) }
func (w *dumper) XorOp(g *ir.Graph, c ir.CompID) error        { return w.leaf(g, c) }
func (w *dumper) ComplementOp(g *ir.Graph, c ir.CompID) error { return w.leaf(g, c) }
func (w *dumper) CastOp(g *ir.Graph, c ir.CompID) error       { return w.leaf(g, c) }
func (w *dumper) Reg(g *ir.Graph, c ir.CompID) error          { return w.leaf(g, c) }

func (w *dumper) Module(g *ir.Graph, c ir.CompID, enter func() error) error {
	return w.module(g, c, enter)
}

func (w *dumper) Block(g *ir.Graph, c ir.CompID, enter func() error) error {
	return w.module(g, c, enter)
}

func (w *dumper) Decision(g *ir.Graph, c ir.CompID, enter func() error) error {
	return w.module(g, c, enter)
}

func (w *dumper) Branch(g *ir.Graph, c ir.CompID, enter func() error) error {
	return w.module(g, c, enter)
}

func (w *dumper) LoopBody(g *ir.Graph, c ir.CompID, enter func() error) error {
	return w.module(g, c, enter)
}

func (w *dumper) Loop(g *ir.Graph, c ir.CompID, enter func() error) error {
	return w.module(g, c, enter)
}

func appendValue(b []byte, v *value.Value, forced bool) []byte {
	if v == nil {
		return append(b, '?')
	}

	b = append(b, v.Token()...)

	if forced {
		b = append(b, '!')
	}

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	for i := 0; i < d; i++ {
		b = append(b, '\t')
	}

	return hfmt.Appendf(b, f, args...)
}
