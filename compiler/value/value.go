package value

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Owner is an opaque handle of the bus a bit is sourced from.
	Owner int32

	Const uint8

	// Bit is a snapshot of one Value position.
	// Global bits have Owner == NoOwner.
	Bit struct {
		Care   bool
		Const  Const
		Owner  Owner
		Offset int32

		InvOwner  Owner
		InvOffset int32
	}

	// Value is a fixed size vector of bits. Position 0 is the LSB.
	Value struct {
		signed bool
		bits   []Bit
	}

	SizeMismatchError struct {
		Want, Got int
	}
)

const NoOwner Owner = -1

const (
	NotConstant Const = iota
	Off
	On
)

// Canonical global bits.
var (
	Zero     = Bit{Care: true, Const: Off, Owner: NoOwner, InvOwner: NoOwner}
	One      = Bit{Care: true, Const: On, Owner: NoOwner, InvOwner: NoOwner}
	Care     = Bit{Care: true, Const: NotConstant, Owner: NoOwner, InvOwner: NoOwner}
	DontCare = Bit{Care: false, Const: NotConstant, Owner: NoOwner, InvOwner: NoOwner}
)

// New returns a value of generic care bits.
func New(size int, signed bool) *Value {
	if size < 0 {
		panic("negative value size")
	}

	v := &Value{
		signed: signed,
		bits:   make([]Bit, size),
	}

	for i := range v.bits {
		v.bits[i] = Care
	}

	return v
}

// Owned returns a value each bit of which is sourced by owner at the same position.
func Owned(owner Owner, size int, signed bool) *Value {
	v := New(size, signed)

	for i := range v.bits {
		v.bits[i] = OwnedBit(owner, i)
	}

	return v
}

// Constant returns a value holding x. Its size is at least minSize and
// big enough to represent x under the requested signedness.
func Constant(x int64, minSize int, signed bool) *Value {
	size := minSize
	if n := constantBits(x, signed); n > size {
		size = n
	}

	v := New(size, signed)

	for i := range v.bits {
		s := i
		if s > 63 {
			s = 63
		}

		if (x>>s)&1 != 0 {
			v.bits[i] = One
		} else {
			v.bits[i] = Zero
		}
	}

	return v
}

func OwnedBit(owner Owner, off int) Bit {
	if owner == NoOwner {
		return Care
	}

	return Bit{Care: true, Owner: owner, Offset: int32(off), InvOwner: NoOwner}
}

// ConstBit returns One or Zero.
func ConstBit(on bool) Bit {
	if on {
		return One
	}

	return Zero
}

func (v *Value) Size() int { return len(v.bits) }

func (v *Value) IsSigned() bool { return v.signed }

func (v *Value) Copy() *Value {
	return &Value{
		signed: v.signed,
		bits:   append([]Bit(nil), v.bits...),
	}
}

func (v *Value) Bit(i int) Bit { return v.bits[i] }

// SetBit stores b normalized to the canonical form.
func (v *Value) SetBit(i int, b Bit) {
	v.bits[i] = b.normalize()
}

func (v *Value) SetCare(i int, care bool) {
	b := v.bits[i]

	switch {
	case !care:
		v.bits[i] = DontCare
	case !b.Care:
		v.bits[i] = Care
	}
}

// SetConstant makes bit i a global care bit with constant state c.
func (v *Value) SetConstant(i int, c Const) {
	switch c {
	case On:
		v.bits[i] = One
	case Off:
		v.bits[i] = Zero
	default:
		v.bits[i] = Care
	}
}

func (v *Value) SetOwner(i int, owner Owner, off int) {
	v.bits[i] = OwnedBit(owner, off)
}

// SetInvertedOwner records that bit i is the complement of bit off of owner.
func (v *Value) SetInvertedOwner(i int, owner Owner, off int) {
	b := v.bits[i]

	b.InvOwner = owner
	b.InvOffset = int32(off)

	v.bits[i] = b.normalize()
}

func (v *Value) IsCare(i int) bool { return v.bits[i].Care }

func (v *Value) Constant(i int) Const { return v.bits[i].Const }

func (v *Value) IsOn(i int) bool { return v.bits[i].Const == On }

func (v *Value) IsOff(i int) bool { return v.bits[i].Const == Off }

func (v *Value) IsGlobal(i int) bool { return v.bits[i].IsGlobal() }

func (v *Value) Owner(i int) Owner { return v.bits[i].Owner }

func (v *Value) Offset(i int) int { return int(v.bits[i].Offset) }

// IsGenericCare reports whether bit i is a global care bit of unknown state.
func (v *Value) IsGenericCare(i int) bool { return v.bits[i].IsGenericCare() }

// Equal is bit equality: the same care state and either the same constant
// state for global bits or the same source and inverted source for owned ones.
func (b Bit) Equal(c Bit) bool {
	if b.Care != c.Care || b.Owner != c.Owner {
		return false
	}

	if b.Owner == NoOwner {
		return b.Const == c.Const
	}

	if b.Offset != c.Offset || b.InvOwner != c.InvOwner {
		return false
	}

	return b.InvOwner == NoOwner || b.InvOffset == c.InvOffset
}

func (b Bit) IsGlobal() bool { return b.Owner == NoOwner }

func (b Bit) IsConstant() bool { return b.Care && b.Const != NotConstant }

func (b Bit) IsGenericCare() bool {
	return b.Care && b.Const == NotConstant && b.Owner == NoOwner
}

// Invert returns the complement of b.
// Owned bits become generic care remembering the inverted source.
func (b Bit) Invert() Bit {
	switch {
	case !b.Care:
		return DontCare
	case b.Const == On:
		return Zero
	case b.Const == Off:
		return One
	case b.InvOwner != NoOwner:
		return OwnedBit(b.InvOwner, int(b.InvOffset))
	case b.Owner != NoOwner:
		r := Care
		r.InvOwner = b.Owner
		r.InvOffset = b.Offset

		return r
	default:
		return Care
	}
}

func (b Bit) normalize() Bit {
	if !b.Care {
		return DontCare
	}

	if b.Const != NotConstant {
		return ConstBit(b.Const == On)
	}

	if b.Owner == NoOwner {
		b.Offset = 0
	}

	if b.InvOwner == NoOwner {
		b.InvOffset = 0
	}

	return b
}

func (b Bit) String() string {
	switch {
	case !b.Care:
		return "x"
	case b.Const == On:
		return "1"
	case b.Const == Off:
		return "0"
	case b.Owner == NoOwner:
		return "C"
	default:
		return fmt.Sprintf("c(%d:%d)", b.Owner, b.Offset)
	}
}

func (c Const) String() string {
	switch c {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "not_constant"
	}
}

func (v *Value) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if v == nil {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "%s", v.String())
}

func (e SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: want %d, got %d", e.Want, e.Got)
}

func constantBits(x int64, signed bool) int {
	n := 0

	if signed {
		u := uint64(x)
		if x < 0 {
			u = ^u
		}

		for ; u != 0; u >>= 1 {
			n++
		}

		return n + 1
	}

	for u := uint64(x); u != 0; u >>= 1 {
		n++
	}

	if n == 0 {
		n = 1
	}

	return n
}
