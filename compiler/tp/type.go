package tp

import "fmt"

type (
	// Int describes the width and signedness of a terminal.
	Int struct {
		Bits   int16
		Signed bool
	}
)

func Unsigned(bits int) Int { return Int{Bits: int16(bits)} }
func Signed(bits int) Int   { return Int{Bits: int16(bits), Signed: true} }

// Bool is the type of done and go signals.
var Bool = Int{Bits: 1}

func (x Int) Size() int {
	return int(x.Bits)
}

func (x Int) String() string {
	s := 'u'
	if x.Signed {
		s = 's'
	}

	return fmt.Sprintf("%c%d", s, x.Bits)
}
