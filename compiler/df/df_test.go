package df

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcc/xronos-sub001/compiler/front"
	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/tp"
	"github.com/orcc/xronos-sub001/compiler/value"
)

func decision(t *testing.T, g *ir.Graph, lit string) ir.CompID {
	ctx := context.Background()

	test := g.NewConstant(value.MustParse(lit))

	tb, err := front.NewBlock(ctx, g, []ir.CompID{test}, false)
	require.NoError(t, err)

	d, err := front.NewDecision(ctx, g, tb, test)
	require.NoError(t, err)

	return d
}

func result(g *ir.Graph, c ir.CompID) *value.Value {
	return g.Bus(g.ResultBus(c)).Value
}

func TestRunDecision(t *testing.T) {
	ctx := context.Background()
	g := ir.New()

	d := decision(t, g, "1")
	x := g.Comp(d).X.(*ir.Decision)

	st, err := Run(ctx, g, d, Options{Backward: true})
	require.NoError(t, err)

	assert.Greater(t, len(st.Sweeps), 1)
	assert.Greater(t, st.Changed(), 0)

	last := st.Sweeps[len(st.Sweeps)-1]
	assert.Equal(t, Sweep{}, last)

	assert.Equal(t, "0", result(g, x.Not).Token())
	assert.True(t, result(g, x.FalseAnd).IsOff(0))
	assert.False(t, result(g, x.TrueAnd).IsConstant())

	// idempotent
	st, err = Run(ctx, g, d, Options{Backward: true})
	require.NoError(t, err)

	assert.Len(t, st.Sweeps, 1)
	assert.Equal(t, 0, st.Changed())
}

func TestRunBlockChain(t *testing.T) {
	ctx := context.Background()
	g := ir.New()

	k := g.NewConstant(value.MustParse("0101"))

	op := g.NewBinaryOp(ir.KindAndOp, tp.Unsigned(4), tp.Unsigned(4))

	blk, err := front.NewBlock(ctx, g, []ir.CompID{k, op}, false)
	require.NoError(t, err)

	en := g.Comp(op).Entries[0]
	g.AddDependency(en, g.Comp(op).Data[0], ir.Data, g.ResultBus(k))
	g.AddDependency(en, g.Comp(op).Data[1], ir.Data, g.ResultBus(k))

	_, err = Run(ctx, g, blk, Options{})
	require.NoError(t, err)

	assert.Equal(t, "0101", result(g, op).Token())
}

func TestRunNotConverged(t *testing.T) {
	ctx := context.Background()
	g := ir.New()

	d := decision(t, g, "0")

	st, err := Run(ctx, g, d, Options{MaxSweeps: 1})
	assert.ErrorIs(t, err, ErrNotConverged)
	assert.Len(t, st.Sweeps, 1)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := ir.New()
	d := decision(t, g, "1")

	_, err := Run(ctx, g, d, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrder(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	a := g.NewAnd(2)

	blk, err := front.NewBlock(ctx, g, []ir.CompID{a}, false)
	require.NoError(t, err)

	order := Order(g, blk)

	require.Len(t, order, 4)
	assert.Equal(t, blk, order[0])
	assert.Equal(t, g.Comp(blk).InBuf, order[1])
	assert.Equal(t, a, order[2])
	assert.Equal(t, g.OutBufs(blk)[0], order[3])
}
