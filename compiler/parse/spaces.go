package parse

// Spaces is a set of skippable bytes below 64.
type Spaces uint64

var SpaceAll = NewSpaces(' ', '\t', '\r', '\n')

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Skip(b []byte, st int) (i int) {
	for i = st; i < len(b) && b[i] < 64 && s&(1<<b[i]) != 0; i++ {
	}

	return
}
