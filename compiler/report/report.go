// Package report renders propagation results as tables.
package report

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"

	"github.com/orcc/xronos-sub001/compiler/df"
	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/value"
)

// Widths prints every sized data bus under root with its declared and
// compacted width. It returns the number of bits compaction would save.
func Widths(w io.Writer, g *ir.Graph, root ir.CompID) (saved int) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Component").SetAlign(tabulate.ML)
	tab.Header("Exit").SetAlign(tabulate.ML)
	tab.Header("Bus").SetAlign(tabulate.MR)
	tab.Header("Width").SetAlign(tabulate.MR)
	tab.Header("Compacted").SetAlign(tabulate.MR)
	tab.Header("Value").SetAlign(tabulate.ML)

	g.Walk(root, func(c ir.CompID) bool {
		for _, e := range g.Comp(c).Exits {
			for _, b := range g.Exit(e).Data {
				v := g.Bus(b).Value
				if v == nil {
					continue
				}

				n := v.CompactedSize()
				saved += v.Size() - n

				row := tab.Row()
				row.Column(g.Describe(c))
				row.Column(g.Exit(e).Tag.String())
				row.Column(fmt.Sprintf("%d", b))
				row.Column(fmt.Sprintf("%d", v.Size()))
				row.Column(fmt.Sprintf("%d", n))
				row.Column(v.Token())
			}
		}

		return true
	})

	row := tab.Row()
	row.Column("Saved").SetFormat(tabulate.FmtBold)
	row.Column("")
	row.Column("")
	row.Column("")
	row.Column(fmt.Sprintf("%d", saved)).SetFormat(tabulate.FmtBold)
	row.Column("")

	tab.Print(w)

	return saved
}

// Sweeps prints how many components each fixpoint sweep changed.
func Sweeps(w io.Writer, st df.Stats) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Sweep").SetAlign(tabulate.MR)
	tab.Header("Forward").SetAlign(tabulate.MR)
	tab.Header("Backward").SetAlign(tabulate.MR)

	for i, s := range st.Sweeps {
		row := tab.Row()
		row.Column(fmt.Sprintf("%d", i))
		row.Column(fmt.Sprintf("%d", s.Forward))
		row.Column(fmt.Sprintf("%d", s.Backward))
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", st.Changed())).SetFormat(tabulate.FmtBold)
	row.Column("")

	tab.Print(w)
}

// Values prints parsed literals with their state and compacted width.
func Values(w io.Writer, lits []string, vals []*value.Value) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Literal").SetAlign(tabulate.ML)
	tab.Header("State").SetAlign(tabulate.ML)
	tab.Header("Width").SetAlign(tabulate.MR)
	tab.Header("Compacted").SetAlign(tabulate.MR)
	tab.Header("Care").SetAlign(tabulate.MR)
	tab.Header("Known").SetAlign(tabulate.MR)
	tab.Header("Constant").SetAlign(tabulate.MR)

	for i, v := range vals {
		row := tab.Row()
		row.Column(lits[i])
		row.Column(v.String())
		row.Column(fmt.Sprintf("%d", v.Size()))
		row.Column(fmt.Sprintf("%d", v.CompactedSize()))

		care := v.CareMask()
		row.Column(string(care.AppendBinary(nil, v.Size())))

		known := v.ConstantMask()
		row.Column(string(known.AppendBinary(nil, v.Size())))

		if v.IsConstant() {
			num, err := v.Number()
			if err == nil {
				row.Column(num.String())
				continue
			}
		}

		row.Column("-")
	}

	tab.Print(w)
}
