package prop

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/orcc/xronos-sub001/compiler/ir"
	"github.com/orcc/xronos-sub001/compiler/value"
)

type (
	// NoRuleError is returned for a component kind the engine knows nothing about.
	NoRuleError struct {
		Kind ir.Kind
	}

	rule struct {
		fwd func(g *ir.Graph, c ir.CompID) (bool, error)
		bwd func(g *ir.Graph, c ir.CompID) (bool, error)
	}
)

var ErrForced = errors.New("value is forced")

var rules map[ir.Kind]rule

func init() {
	composite := rule{fwd: none, bwd: none}

	rules = map[ir.Kind]rule{
		ir.KindInBuf:        {fwd: inBufForward, bwd: inBufBackward},
		ir.KindOutBuf:       {fwd: outBufForward, bwd: outBufBackward},
		ir.KindConstant:     {fwd: constantForward, bwd: none},
		ir.KindNoOp:         {fwd: noOpForward, bwd: noOpBackward},
		ir.KindAnd:          {fwd: andForward, bwd: logicBackward},
		ir.KindOr:           {fwd: orForward, bwd: logicBackward},
		ir.KindNot:          {fwd: notForward, bwd: bitwiseBackward},
		ir.KindAndOp:        {fwd: binaryForward(andBit), bwd: binaryBackward(value.Off)},
		ir.KindOrOp:         {fwd: binaryForward(orBit), bwd: binaryBackward(value.On)},
		ir.KindXorOp:        {fwd: binaryForward(xorBit), bwd: binaryBackward(value.NotConstant)},
		ir.KindComplementOp: {fwd: notForward, bwd: bitwiseBackward},
		ir.KindCastOp:       {fwd: castForward, bwd: castBackward},
		ir.KindReg:          {fwd: regForward, bwd: regBackward},

		ir.KindModule:   composite,
		ir.KindBlock:    composite,
		ir.KindDecision: composite,
		ir.KindBranch:   composite,
		ir.KindLoopBody: composite,
		ir.KindLoop:     composite,
	}
}

// Forward derives the values of every port of c from its drivers
// and then pushes them through c onto its buses.
// An unfinished input is not an error: c is left for a later sweep.
func Forward(ctx context.Context, g *ir.Graph, c ir.CompID) (mod bool, err error) {
	r, ok := rules[g.Kind(c)]
	if !ok {
		return false, NoRuleError{Kind: g.Kind(c)}
	}

	for _, p := range g.PortsOf(c) {
		m, err := pushPortForward(g, p)
		if err != nil {
			return mod, errors.Wrap(err, "%v: port %d", g.Describe(c), p)
		}

		mod = mod || m
	}

	m, err := r.fwd(g, c)
	if err != nil {
		return mod, errors.Wrap(err, "%v", g.Describe(c))
	}

	mod = mod || m

	if mod {
		tlog.SpanFromContext(ctx).V("prop").Printw("forward", "comp", g.Describe(c), "buses", busValues(g, c))
	}

	return mod, nil
}

// Backward marks bits nobody consumes as don't care on the buses of c
// and then on its inputs.
func Backward(ctx context.Context, g *ir.Graph, c ir.CompID) (mod bool, err error) {
	r, ok := rules[g.Kind(c)]
	if !ok {
		return false, NoRuleError{Kind: g.Kind(c)}
	}

	for _, b := range g.BusesOf(c) {
		m, err := pushBusBackward(g, b)
		if err != nil {
			return mod, errors.Wrap(err, "%v: bus %d", g.Describe(c), b)
		}

		mod = mod || m
	}

	m, err := r.bwd(g, c)
	if err != nil {
		return mod, errors.Wrap(err, "%v", g.Describe(c))
	}

	mod = mod || m

	if mod {
		tlog.SpanFromContext(ctx).V("prop").Printw("backward", "comp", g.Describe(c), "ports", portValues(g, c))
	}

	return mod, nil
}

func none(g *ir.Graph, c ir.CompID) (bool, error) { return false, nil }

func busValues(g *ir.Graph, c ir.CompID) (r []*value.Value) {
	for _, b := range g.BusesOf(c) {
		r = append(r, g.Bus(b).Value)
	}

	return r
}

func portValues(g *ir.Graph, c ir.CompID) (r []*value.Value) {
	for _, p := range g.PortsOf(c) {
		r = append(r, g.Port(p).Value)
	}

	return r
}

func (e NoRuleError) Error() string {
	return fmt.Sprintf("no propagation rule for %v", e.Kind)
}
