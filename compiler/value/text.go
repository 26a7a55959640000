package value

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"

	"github.com/orcc/xronos-sub001/compiler/parse"
)

// literal is [width '] [ '[' ] bits [ ']' ] [ +/- ].
var literal = parse.AllOf{
	parse.Try{Parser: parse.AllOf{parse.Int{}, parse.Const("'")}},
	parse.Optional{Parser: parse.Const("[")},
	parse.Chars("01cx"),
	parse.Optional{Parser: parse.Const("]")},
	parse.Optional{Parser: parse.Const("+/-")},
}

// Parse reads a value written MSB first:
// 1 and 0 are constants, c is care and x is don't care.
// The debug form printed by String is accepted as well.
func Parse(s string) (*Value, error) {
	x, err := parse.Parse(context.Background(), literal, []byte(s))
	if err != nil {
		return nil, errors.Wrap(err, "value literal")
	}

	parts := x.([]parse.Node)
	digits := parts[2].(string)

	if !parse.IsNone(parts[0]) {
		w := parts[0].([]parse.Node)[0].(int)
		if w != len(digits) {
			return nil, errors.Wrap(SizeMismatchError{Want: w, Got: len(digits)}, "value literal %q", s)
		}
	}

	if parse.IsNone(parts[1]) != parse.IsNone(parts[3]) {
		return nil, errors.New("value literal %q: unbalanced brackets", s)
	}

	v := New(len(digits), !parse.IsNone(parts[4]))

	for i := range digits {
		pos := len(digits) - 1 - i

		switch digits[i] {
		case '1':
			v.bits[pos] = One
		case '0':
			v.bits[pos] = Zero
		case 'c', 'C':
			v.bits[pos] = Care
		case 'x', 'X':
			v.bits[pos] = DontCare
		default:
			return nil, errors.New("value literal %q: bad bit %q", s, digits[i])
		}
	}

	return v, nil
}

func MustParse(s string) *Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

// Token is the literal form accepted by Parse.
// Ownership is not represented.
func (v *Value) Token() string {
	b := make([]byte, len(v.bits))

	for i := range v.bits {
		b[len(b)-1-i] = v.bits[i].char(false)
	}

	return string(b)
}

// String is the debug form: width, bits MSB first, and +/- for signed values.
// Global care bits are C, owned ones are c.
func (v *Value) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%2d'[", len(v.bits))

	for i := len(v.bits) - 1; i >= 0; i-- {
		b.WriteByte(v.bits[i].char(true))
	}

	b.WriteByte(']')

	if v.signed {
		b.WriteString("+/-")
	}

	return b.String()
}

// SourceString describes where each run of bits comes from, MSB first.
func (v *Value) SourceString(name func(Owner) string) string {
	var b strings.Builder

	b.WriteByte('{')

	for hi := len(v.bits) - 1; hi >= 0; {
		lo := hi
		for lo > 0 && sameRun(v.bits[lo-1], v.bits[lo]) {
			lo--
		}

		if hi != len(v.bits)-1 {
			b.WriteString(", ")
		}

		x := v.bits[hi]

		switch {
		case !x.Care:
			fmt.Fprintf(&b, "%d'x", hi-lo+1)
		case x.Const != NotConstant:
			fmt.Fprintf(&b, "%d'b", hi-lo+1)
			for i := hi; i >= lo; i-- {
				b.WriteByte(v.bits[i].char(false))
			}
		case x.Owner == NoOwner:
			fmt.Fprintf(&b, "%d'C", hi-lo+1)
		default:
			fmt.Fprintf(&b, "%s[%d:%d]", name(x.Owner), x.Offset, v.bits[lo].Offset)
		}

		hi = lo - 1
	}

	b.WriteByte('}')

	return b.String()
}

// sameRun reports whether lower continues the run started by upper.
func sameRun(lower, upper Bit) bool {
	switch {
	case !upper.Care:
		return !lower.Care
	case upper.Const != NotConstant:
		return lower.IsConstant()
	case upper.Owner == NoOwner:
		return lower.IsGenericCare()
	default:
		return lower.Owner == upper.Owner && lower.Offset+1 == upper.Offset
	}
}

func (b Bit) char(debug bool) byte {
	switch {
	case !b.Care:
		return 'x'
	case b.Const == On:
		return '1'
	case b.Const == Off:
		return '0'
	case debug && b.Owner == NoOwner:
		return 'C'
	default:
		return 'c'
	}
}
