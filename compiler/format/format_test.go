package format

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcc/xronos-sub001/compiler/front"
	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/tp"
	"github.com/orcc/xronos-sub001/compiler/value"
)

func TestDumpEmptyBlock(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	blk, err := front.NewBlock(ctx, g, nil, false)
	require.NoError(t, err)

	b, err := Dump(ctx, nil, g, blk)
	require.NoError(t, err)

	assert.Equal(t, "block#0 done\n\tinbuf#1 done\n\toutbuf#2\n", string(b))
}

func TestDumpValues(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	k := g.NewConstant(value.MustParse("10"))
	g.Bus(g.ResultBus(k)).Forced = true

	b, err := Dump(ctx, []byte("> "), g, k)
	require.NoError(t, err)
	assert.Equal(t, "> constant#0 done: 10!\n", string(b))

	op := g.NewBinaryOp(ir.KindXorOp, tp.Unsigned(2), tp.Unsigned(2))
	g.Port(g.Comp(op).Data[1]).Value = nil
	g.Exit(g.MainExit(op)).Latency = ir.Fixed(2)

	b, err = Dump(ctx, nil, g, op)
	require.NoError(t, err)
	assert.Equal(t, "xor_op#1 (cc ?) done@2: cc\n", string(b))
}

func TestDumpDeepNesting(t *testing.T) {
	ctx := context.Background()

	g := ir.New()

	blk, err := front.NewBlock(ctx, g, nil, false)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		blk, err = front.NewBlock(ctx, g, []ir.CompID{blk}, false)
		require.NoError(t, err)
	}

	b, err := Dump(ctx, nil, g, blk)
	require.NoError(t, err)

	assert.Contains(t, string(b), "\n"+strings.Repeat("\t", 21)+"inbuf#1 done\n")
}
