package ir

import (
	"fmt"

	"tlog.app/go/loc"
)

type (
	// InvariantError is raised for structurally invalid graph mutations.
	// It is not recoverable.
	InvariantError struct {
		Comp CompID
		Kind Kind
		Msg  string
		From loc.PC
	}
)

func (g *Graph) invariant(c CompID, format string, args ...any) {
	x := g.Comps[c]

	panic(InvariantError{
		Comp: c,
		Kind: x.Kind,
		Msg:  fmt.Sprintf(format, args...),
		From: x.From,
	})
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("%v#%d (created at %v): %s", e.Kind, e.Comp, e.From, e.Msg)
}
