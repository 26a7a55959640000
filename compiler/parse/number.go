package parse

import (
	"context"
	"strconv"

	"tlog.app/go/errors"
)

type (
	// Int parses an unsigned decimal integer into an int.
	Int struct{}
)

func (p Int) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	i = st

	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}

	if i == st {
		return nil, st, errors.New("Int expected")
	}

	v, err := strconv.Atoi(string(b[st:i]))
	if err != nil {
		return nil, st, errors.Wrap(err, "Int")
	}

	return v, i, nil
}
