package bitmap

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Big is an arbitrary width bit mask. Bit 0 is the least significant.
	Big struct {
		b []uint64
	}
)

func (s *Big) Set(i int) {
	i, j := ij(i)

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s *Big) Clear(i int) {
	i, j := ij(i)

	if i >= len(s.b) {
		return
	}

	s.b[i] &^= 1 << j
}

func (s Big) IsSet(i int) bool {
	i, j := ij(i)

	if i >= len(s.b) {
		return false
	}

	return (s.b[i] & (1 << j)) != 0
}

// FillSet sets bits [l, r).
func (s *Big) FillSet(l, r int) {
	for i := l; i < r; i++ {
		s.Set(i)
	}
}

func (s Big) Copy() Big {
	return Big{b: append([]uint64(nil), s.b...)}
}

func (s *Big) Size() (r int) {
	if s == nil {
		return 0
	}

	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

func (s Big) Range(f func(i int) bool) {
	for i, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(i*64 + j) {
				return
			}
		}
	}
}

func (s Big) Equal(x Big) bool {
	n := len(s.b)
	if len(x.b) > n {
		n = len(x.b)
	}

	for i := 0; i < n; i++ {
		if s.word(i) != x.word(i) {
			return false
		}
	}

	return true
}

// AppendBinary appends the lowest width bits MSB first.
func (s Big) AppendBinary(b []byte, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		if s.IsSet(i) {
			b = append(b, '1')
		} else {
			b = append(b, '0')
		}
	}

	return b
}

func (s *Big) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(i int) bool {
		b = e.AppendInt(b, i)

		return true
	})

	b = e.AppendBreak(b)

	return b
}

func (s Big) word(i int) uint64 {
	if i < len(s.b) {
		return s.b[i]
	}

	return 0
}

func ij(pos int) (i int, j int) {
	return pos / 64, pos % 64
}

func (s *Big) grow(i int) {
	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}
}
