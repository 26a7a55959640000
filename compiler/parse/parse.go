package parse

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
)

type (
	Node = any

	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error)
	}

	PartialReadError struct {
		End int
	}
)

// Parse runs p over the whole text. Surrounding spaces are allowed,
// anything else left unconsumed is a PartialReadError.
func Parse(ctx context.Context, p Parser, text []byte) (x Node, err error) {
	i := SpaceAll.Skip(text, 0)

	x, i, err = p.Parse(ctx, text, i)
	if err != nil {
		return nil, errors.Wrap(err, "parse %q", text)
	}

	i = SpaceAll.Skip(text, i)

	if i != len(text) {
		return x, PartialReadError{End: i}
	}

	return x, nil
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("partial read: unexpected input at %d", e.End)
}
