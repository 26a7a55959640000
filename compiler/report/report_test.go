package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orcc/xronos-sub001/compiler/df"
	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/value"
)

func TestWidths(t *testing.T) {
	g := ir.New()

	k := g.NewConstant(value.MustParse("0001"))

	var buf bytes.Buffer

	saved := Widths(&buf, g, k)
	assert.Equal(t, 2, saved)

	out := buf.String()
	assert.Contains(t, out, "constant#0")
	assert.Contains(t, out, "0001")
	assert.Contains(t, out, "Saved")
}

func TestSweeps(t *testing.T) {
	var buf bytes.Buffer

	Sweeps(&buf, df.Stats{Sweeps: []df.Sweep{{Forward: 3, Backward: 1}, {}}})

	out := buf.String()
	assert.Contains(t, out, "Forward")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "4")
}

func TestValues(t *testing.T) {
	lits := []string{"1100xc", "0011"}
	vals := []*value.Value{value.MustParse(lits[0]), value.MustParse(lits[1])}

	var buf bytes.Buffer

	Values(&buf, lits, vals)

	out := buf.String()
	assert.Contains(t, out, "1100xc")
	assert.Contains(t, out, "0011")
	assert.Contains(t, out, "Compacted")
	assert.Contains(t, out, "111101")
	assert.Contains(t, out, "111100")
}
