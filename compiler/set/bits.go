package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	Key interface {
		~int | ~int32 | ~int64
	}

	// Bits is a set of graph handles.
	// The zero value is an empty set ready to use.
	Bits[K Key] struct {
		b []uint64
	}
)

func (s Bits[K]) Copy() Bits[K] {
	if s.b == nil {
		return Bits[K]{}
	}

	return Bits[K]{b: append([]uint64{}, s.b...)}
}

func (s *Bits[K]) Set(k K) {
	i, j := ij(k)

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s Bits[K]) IsSet(k K) bool {
	if k < 0 {
		return false
	}

	i, j := ij(k)

	if i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s *Bits[K]) Clear(k K) {
	if k < 0 {
		return
	}

	i, j := ij(k)

	if i >= len(s.b) {
		return
	}

	s.b[i] &^= 1 << j
}

func (s Bits[K]) Size() (r int) {
	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

func (s Bits[K]) Empty() bool {
	for _, c := range s.b {
		if c != 0 {
			return false
		}
	}

	return true
}

// Range calls f in ascending key order until it returns false.
func (s Bits[K]) Range(f func(k K) bool) {
	for i, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(K(i*64 + j)) {
				return
			}
		}
	}
}

func (s Bits[K]) Slice() (r []K) {
	s.Range(func(k K) bool {
		r = append(r, k)
		return true
	})

	return r
}

func (s Bits[K]) Equal(x Bits[K]) bool {
	n := len(s.b)
	if len(x.b) > n {
		n = len(x.b)
	}

	for i := 0; i < n; i++ {
		var l, r uint64

		if i < len(s.b) {
			l = s.b[i]
		}
		if i < len(x.b) {
			r = x.b[i]
		}

		if l != r {
			return false
		}
	}

	return true
}

func (s Bits[K]) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(k K) bool {
		b = e.AppendInt(b, int(k))

		return true
	})

	b = e.AppendBreak(b)

	return b
}

func ij[K Key](k K) (i int, j int) {
	p := int(k)
	if p < 0 {
		panic("negative set key")
	}

	return p / 64, p % 64
}

func (s *Bits[K]) grow(i int) {
	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}
}
