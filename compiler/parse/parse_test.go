package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinators(t *testing.T) {
	ctx := context.Background()

	p := AllOf{
		Try{Parser: AllOf{Int{}, Const("'")}},
		Chars("ab"),
		Optional{Parser: Const("!")},
	}

	x, err := Parse(ctx, p, []byte("  12'abBA!\n"))
	require.NoError(t, err)

	parts := x.([]Node)
	assert.Equal(t, 12, parts[0].([]Node)[0])
	assert.Equal(t, "abBA", parts[1])
	assert.False(t, IsNone(parts[2]))

	x, err = Parse(ctx, p, []byte("ab"))
	require.NoError(t, err)

	parts = x.([]Node)
	assert.True(t, IsNone(parts[0]))
	assert.True(t, IsNone(parts[2]))
}

func TestPartialRead(t *testing.T) {
	_, err := Parse(context.Background(), Int{}, []byte(" 12 3"))
	assert.ErrorAs(t, err, &PartialReadError{})

	_, err = Parse(context.Background(), Const("x"), []byte("y"))
	assert.Error(t, err)

	x, err := Parse(context.Background(), None{}, []byte(" \t"))
	require.NoError(t, err)
	assert.True(t, IsNone(x))
}
