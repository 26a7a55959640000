package value

import (
	"math/big"

	"tlog.app/go/errors"

	"github.com/orcc/xronos-sub001/compiler/bitmap"
)

var (
	ErrNotConstant  = errors.New("value is not constant")
	ErrSignMismatch = errors.New("sign mismatch")
)

// Fits checks w can replace v: same size and signedness.
func (v *Value) Fits(w *Value) error {
	if len(v.bits) != len(w.bits) {
		return SizeMismatchError{Want: len(v.bits), Got: len(w.bits)}
	}

	if v.signed != w.signed {
		return errors.Wrap(ErrSignMismatch, "want signed %v", v.signed)
	}

	return nil
}

// BitEquals compares bit i of v with bit j of w.
func (v *Value) BitEquals(i int, w *Value, j int) bool {
	return v.bits[i].Equal(w.bits[j])
}

// Equivalent reports whether v and w have the same size, signedness and bits.
func (v *Value) Equivalent(w *Value) bool {
	if v.signed != w.signed || len(v.bits) != len(w.bits) {
		return false
	}

	for i := range v.bits {
		if !v.bits[i].Equal(w.bits[i]) {
			return false
		}
	}

	return true
}

// Union keeps the bits v and w agree on and makes the rest generic care.
func (v *Value) Union(w *Value) (*Value, error) {
	if len(v.bits) != len(w.bits) {
		return nil, SizeMismatchError{Want: len(v.bits), Got: len(w.bits)}
	}

	r := v.Copy()

	for i := range r.bits {
		if !r.bits[i].Equal(w.bits[i]) {
			r.bits[i] = Care
		}
	}

	return r, nil
}

// Join merges values reaching one port over mutually exclusive paths.
// Don't care contributors are ignored. A position all care contributors
// agree on keeps that bit, anything else is generic care.
// The result is don't care only where every contributor is.
func Join(vals ...*Value) (*Value, error) {
	if len(vals) == 0 {
		return nil, nil
	}

	size := vals[0].Size()

	for _, v := range vals[1:] {
		if err := vals[0].Fits(v); err != nil {
			return nil, err
		}
	}

	r := New(size, vals[0].signed)

	for i := range r.bits {
		var first Bit
		n := 0
		same := true

		for _, v := range vals {
			b := v.bits[i]
			if !b.Care {
				continue
			}

			if n == 0 {
				first = b
			} else if !first.Equal(b) {
				same = false
			}

			n++
		}

		switch {
		case n == 0:
			r.bits[i] = DontCare
		case same:
			r.bits[i] = first
		default:
			r.bits[i] = Care
		}
	}

	return r, nil
}

// CompactedSize is the number of bits needed after dropping
// redundant copies of the most significant bit.
func (v *Value) CompactedSize() int {
	size := len(v.bits)
	if size == 0 {
		return 0
	}

	msb := size - 1

	if !v.signed && v.bits[msb].Care && v.bits[msb].Const != Off {
		return size
	}

	compacted := size

	for i := size - 2; i >= 0; i-- {
		m := v.bits[msb]
		cur := v.bits[i]

		if m.IsGenericCare() {
			break
		}

		if m.Care && !m.Equal(cur) {
			break
		}

		compacted--
		msb = i
	}

	if compacted < 1 {
		compacted = 1
	}

	return compacted
}

// Narrow returns the low size bits of v.
func (v *Value) Narrow(size int) *Value {
	if size > len(v.bits) {
		size = len(v.bits)
	}

	return &Value{
		signed: v.signed,
		bits:   append([]Bit(nil), v.bits[:size]...),
	}
}

// Generic returns a value keeping only the constant and don't care
// state of v. Every other bit is generic care.
func (v *Value) Generic() *Value {
	r := New(len(v.bits), v.signed)

	for i, b := range v.bits {
		switch {
		case !b.Care:
			r.bits[i] = DontCare
		case b.Const != NotConstant:
			r.bits[i] = ConstBit(b.Const == On)
		}
	}

	return r
}

// IsConstant reports whether every care bit is a constant.
func (v *Value) IsConstant() bool {
	for _, b := range v.bits {
		if b.Care && b.Const == NotConstant {
			return false
		}
	}

	return true
}

func (v *Value) IsDontCare() bool {
	for _, b := range v.bits {
		if b.Care {
			return false
		}
	}

	return true
}

// IsAllGenericCare reports whether every bit is generic care.
func (v *Value) IsAllGenericCare() bool {
	for _, b := range v.bits {
		if !b.IsGenericCare() {
			return false
		}
	}

	return true
}

func (v *Value) CareMask() (m bitmap.Big) {
	for i, b := range v.bits {
		if b.Care {
			m.Set(i)
		}
	}

	return m
}

func (v *Value) ConstantMask() (m bitmap.Big) {
	for i, b := range v.bits {
		if b.IsConstant() {
			m.Set(i)
		}
	}

	return m
}

// ValueMask has a bit set for each constant one.
// Signed values with a constant one MSB are extended to width bits.
func (v *Value) ValueMask(width int) (m bitmap.Big) {
	for i, b := range v.bits {
		if b.Care && b.Const == On {
			m.Set(i)
		}
	}

	if n := len(v.bits); v.signed && n != 0 && v.bits[n-1].Const == On {
		m.FillSet(n, width)
	}

	return m
}

// Number returns the numeric value of a constant v.
// Don't care bits count as zeros.
func (v *Value) Number() (*big.Int, error) {
	if !v.IsConstant() {
		return nil, ErrNotConstant
	}

	x := new(big.Int)

	m := v.ValueMask(len(v.bits))
	m.Range(func(i int) bool {
		x.SetBit(x, i, 1)
		return true
	})

	if n := len(v.bits); v.signed && n != 0 && v.bits[n-1].Const == On {
		x.Sub(x, new(big.Int).Lsh(big.NewInt(1), uint(n)))
	}

	return x, nil
}
