package parse

import (
	"bytes"
	"context"
	"strings"

	"tlog.app/go/errors"
)

type (
	Const []byte

	// Chars matches the longest non-empty run of the listed bytes.
	// Matching is case insensitive for letters.
	Chars string
)

func (p Const) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	if bytes.HasPrefix(b[st:], p) {
		return Const(b[st : st+len(p)]), st + len(p), nil
	}

	return nil, st, errors.New("%q expected", []byte(p))
}

func (p Chars) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	i = st

	for i < len(b) && strings.IndexByte(string(p), lower(b[i])) >= 0 {
		i++
	}

	if i == st {
		return nil, st, errors.New("one of %q expected", string(p))
	}

	return string(b[st:i]), i, nil
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}

	return c
}
