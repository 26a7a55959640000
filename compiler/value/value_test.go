package value

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		In, Tok string
	}{
		{In: "1100xc", Tok: "1100xc"},
		{In: "1100XC", Tok: "1100xc"},
		{In: "x", Tok: "x"},
		{In: "0", Tok: "0"},
		{In: "cccc", Tok: "cccc"},
		{In: "6'[1100xc]", Tok: "1100xc"},
		{In: " 4'[1x0C]+/-", Tok: "1x0c"},
	} {
		t.Run(tc.In, func(t *testing.T) {
			v, err := Parse(tc.In)
			require.NoError(t, err)

			assert.Equal(t, tc.Tok, v.Token())

			w, err := Parse(v.String())
			require.NoError(t, err)
			assert.True(t, v.Equivalent(w), "%v vs %v", v, w)
		})
	}
}

func TestParseBitOrder(t *testing.T) {
	v := MustParse("1100xc")

	require.Equal(t, 6, v.Size())
	assert.False(t, v.IsSigned())

	assert.Equal(t, Care, v.Bit(0))
	assert.Equal(t, DontCare, v.Bit(1))
	assert.Equal(t, Zero, v.Bit(2))
	assert.Equal(t, Zero, v.Bit(3))
	assert.Equal(t, One, v.Bit(4))
	assert.Equal(t, One, v.Bit(5))

	assert.Equal(t, " 6'[1100xC]", v.String())
	assert.True(t, MustParse("2'[10]+/-").IsSigned())
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{"", "12", "1100x2", "3'[10]", "[10", "10]"} {
		_, err := Parse(s)
		assert.Error(t, err, "%q", s)
	}
}

func TestCompactedSize(t *testing.T) {
	for _, tc := range []struct {
		In   string
		Size int
	}{
		{In: "1000", Size: 4},
		{In: "cccc", Size: 4},
		{In: "0011", Size: 3},
		{In: "0000", Size: 1},
		{In: "xx01", Size: 2},
		{In: "1110+/-", Size: 2},
		{In: "0001+/-", Size: 2},
		{In: "cc01+/-", Size: 4},
		{In: "1", Size: 1},
	} {
		assert.Equal(t, tc.Size, MustParse(tc.In).CompactedSize(), "%v", tc.In)
	}
}

func TestJoin(t *testing.T) {
	for _, tc := range []struct {
		A, B, Res string
	}{
		{A: "1c", B: "1c", Res: "1c"},
		{A: "10", B: "11", Res: "1c"},
		{A: "x0", B: "1x", Res: "10"},
		{A: "xx", B: "xx", Res: "xx"},
		{A: "0c", B: "xx", Res: "0c"},
	} {
		r, err := Join(MustParse(tc.A), MustParse(tc.B))
		require.NoError(t, err)

		assert.Equal(t, tc.Res, r.Token(), "%v + %v", tc.A, tc.B)
	}

	_, err := Join(MustParse("10"), MustParse("100"))
	assert.ErrorAs(t, err, &SizeMismatchError{})

	_, err = Join(MustParse("10"), MustParse("10+/-"))
	assert.ErrorIs(t, err, ErrSignMismatch)

	r, err := Join()
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func TestJoinLattice(t *testing.T) {
	bits := []Bit{Zero, One, Care, DontCare, OwnedBit(3, 0), OwnedBit(3, 1), OwnedBit(4, 0)}

	val := func(b Bit) *Value {
		v := New(1, false)
		v.SetBit(0, b)
		return v
	}

	for _, a := range bits {
		for _, b := range bits {
			r, err := Join(val(a), val(b))
			require.NoError(t, err)

			got := r.Bit(0)

			switch {
			case !a.Care && !b.Care:
				assert.Equal(t, DontCare, got, "%v %v", a, b)
			case !a.Care:
				assert.True(t, got.Equal(b), "%v %v", a, b)
			case !b.Care:
				assert.True(t, got.Equal(a), "%v %v", a, b)
			case a.Equal(b):
				assert.True(t, got.Equal(a), "%v %v", a, b)
			default:
				assert.True(t, got.IsGenericCare(), "%v %v -> %v", a, b, got)
			}

			again, err := Join(r, val(b))
			require.NoError(t, err)
			assert.True(t, again.Equivalent(r), "idempotent %v %v", a, b)
		}
	}
}

func TestUnion(t *testing.T) {
	r, err := MustParse("10").Union(MustParse("11"))
	require.NoError(t, err)
	assert.Equal(t, "1c", r.Token())

	r, err = MustParse("x1").Union(MustParse("01"))
	require.NoError(t, err)
	assert.Equal(t, "c1", r.Token())

	_, err = MustParse("1").Union(MustParse("11"))
	assert.Error(t, err)
}

func TestBitEquals(t *testing.T) {
	v := Owned(3, 4, false)
	w := Owned(3, 4, false)

	assert.True(t, v.BitEquals(2, w, 2))
	assert.False(t, v.BitEquals(2, w, 1))
	assert.False(t, v.BitEquals(0, New(1, false), 0))

	assert.True(t, DontCare.Equal(DontCare))
	assert.False(t, One.Equal(Zero))
	assert.False(t, Care.Equal(OwnedBit(3, 0)))

	inv := OwnedBit(3, 0)
	inv.InvOwner = 5
	inv.InvOffset = 1

	assert.False(t, inv.Equal(OwnedBit(3, 0)))
}

func TestInvert(t *testing.T) {
	assert.Equal(t, Zero, One.Invert())
	assert.Equal(t, One, Zero.Invert())
	assert.Equal(t, DontCare, DontCare.Invert())

	b := OwnedBit(3, 1).Invert()
	assert.True(t, b.Care)
	assert.True(t, b.IsGlobal())
	assert.Equal(t, Owner(3), b.InvOwner)
	assert.Equal(t, int32(1), b.InvOffset)

	assert.Equal(t, OwnedBit(3, 1), b.Invert())
}

func TestConstant(t *testing.T) {
	assert.Equal(t, "101", Constant(5, 0, false).Token())
	assert.Equal(t, "00101", Constant(5, 5, false).Token())
	assert.Equal(t, "0", Constant(0, 0, false).Token())
	assert.Equal(t, "1110", Constant(-2, 4, true).Token())
	assert.Equal(t, "10", Constant(-2, 0, true).Token())

	x, err := Constant(-2, 4, true).Number()
	require.NoError(t, err)
	assert.Equal(t, int64(-2), x.Int64())

	x, err = MustParse("1x1").Number()
	require.NoError(t, err)
	assert.Equal(t, int64(5), x.Int64())

	_, err = MustParse("1c").Number()
	assert.ErrorIs(t, err, ErrNotConstant)
}

func TestMasks(t *testing.T) {
	v := MustParse("1x0c")

	care := v.CareMask()
	assert.Equal(t, "1011", string(care.AppendBinary(nil, 4)))

	cnst := v.ConstantMask()
	assert.Equal(t, "1010", string(cnst.AppendBinary(nil, 4)))

	val := v.ValueMask(4)
	assert.Equal(t, "1000", string(val.AppendBinary(nil, 4)))

	s := MustParse("10+/-").ValueMask(4)
	assert.Equal(t, "1110", string(s.AppendBinary(nil, 4)))

	assert.True(t, MustParse("1x0").IsConstant())
	assert.False(t, v.IsConstant())
	assert.True(t, MustParse("xx").IsDontCare())
	assert.True(t, New(3, false).IsAllGenericCare())
}

func TestGenericAndNarrow(t *testing.T) {
	v := Owned(7, 3, false)
	v.SetConstant(0, On)
	v.SetCare(1, false)

	assert.Equal(t, "cx1", v.Generic().Token())
	assert.True(t, v.Generic().IsGenericCare(2))

	n := v.Narrow(2)
	assert.Equal(t, 2, n.Size())
	assert.Equal(t, "x1", n.Token())
}

func TestSourceString(t *testing.T) {
	v := Owned(7, 4, false)
	v.SetConstant(0, Off)
	v.SetConstant(1, On)

	name := func(o Owner) string { return fmt.Sprintf("b%d", o) }

	assert.Equal(t, "{b7[3:2], 2'b10}", v.SourceString(name))
	assert.Equal(t, "{2'x, 1'C, 1'b1}", MustParse("xxc1").SourceString(name))
}
