package parse

import (
	"context"

	"tlog.app/go/errors"
)

type (
	None struct{}

	Optional struct {
		Parser
	}

	// Try is Optional which also backs off a partial match.
	Try struct {
		Parser
	}

	AllOf []Parser
)

func (None) Parse(ctx context.Context, b []byte, st int) (_ Node, i int, err error) {
	return None{}, st, nil
}

func (p Optional) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	x, i, err = p.Parser.Parse(ctx, b, st)
	if i == st {
		return None{}, st, nil
	}

	return
}

func (p Try) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	x, i, err = p.Parser.Parse(ctx, b, st)
	if err != nil {
		return None{}, st, nil
	}

	return x, i, nil
}

func (p AllOf) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	i = st

	res := make([]Node, len(p))

	for j, r := range p {
		x, i, err = r.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "%T (%d)", r, j)
		}

		res[j] = x
	}

	return res, i, nil
}

// IsNone reports whether an optional part was absent.
func IsNone(x Node) bool {
	_, ok := x.(None)
	return ok
}
