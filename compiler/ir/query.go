package ir

import (
	"tlog.app/go/errors"
)

// Lineage returns c and its owners up to the root.
func (g *Graph) Lineage(c CompID) (r []CompID) {
	for ; c != Nil; c = g.Comps[c].Owner {
		r = append(r, c)
	}

	return r
}

// IsDescendantOf reports whether a is inside m, directly or not.
func (g *Graph) IsDescendantOf(a, m CompID) bool {
	for c := g.Comps[a].Owner; c != Nil; c = g.Comps[c].Owner {
		if c == m {
			return true
		}
	}

	return false
}

// CommonAncestor returns the innermost module containing both a and b or Nil.
func (g *Graph) CommonAncestor(a, b CompID) CompID {
	la := g.Lineage(a)

	for c := g.Comps[b].Owner; c != Nil; c = g.Comps[c].Owner {
		if index(la[1:], c) >= 0 {
			return c
		}
	}

	return Nil
}

// Consumers returns the ports fed by bus b: the physically connected ones
// or, if there are none, the ports of the logical dependents.
func (g *Graph) Consumers(b BusID) (r []PortID) {
	x := g.Buses[b]

	if !x.Ports.Empty() {
		return x.Ports.Slice()
	}

	x.Dependents.Range(func(d DepID) bool {
		p := g.Deps[d].Port
		if index(r, p) < 0 {
			r = append(r, p)
		}

		return true
	})

	return r
}

// DependentComponents returns owners of every consumer of b.
func (g *Graph) DependentComponents(b BusID) (r []CompID) {
	for _, p := range g.Consumers(b) {
		if c := g.Ports[p].Owner; index(r, c) < 0 {
			r = append(r, c)
		}
	}

	return r
}

// IsIterative reports whether loop body c can be entered again,
// that is its feedback exit exists and is driven from inside.
func (g *Graph) IsIterative(c CompID) bool {
	e := g.ExitByTag(c, FeedbackTag)
	if e == Nil {
		return false
	}

	ob := g.Exits[e].Peer

	return ob != Nil && len(g.Comps[ob].Entries) != 0
}

// HasExit reports whether c or anything inside it has an exit of type t.
func (g *Graph) HasExit(c CompID, t ExitType) (r bool) {
	g.Walk(c, func(x CompID) bool {
		for _, e := range g.Comps[x].Exits {
			if g.Exits[e].Tag.Type == t {
				r = true
			}
		}

		return !r
	})

	return r
}

// IsBalanceable reports whether every path through c can be given
// the same fixed latency by inserting delay.
//
// A loop qualifies only if its inner body leaves through DONE alone,
// has no continue anywhere in it, and is bounded when iterative.
func (g *Graph) IsBalanceable(c CompID) bool {
	x := g.Comps[c]

	if lp, ok := x.X.(*Loop); ok {
		if !g.loopBalanceable(lp) {
			return false
		}
	}

	for _, ch := range x.Children {
		if !g.IsBalanceable(ch) {
			return false
		}
	}

	return true
}

func (g *Graph) loopBalanceable(lp *Loop) bool {
	if lp.Body == Nil {
		return true
	}

	lb := g.Comps[lp.Body].X.(*LoopBody)

	if inner := lb.Body; inner != Nil {
		for _, e := range g.Comps[inner].Exits {
			if g.Exits[e].Tag != CompleteTag {
				return false
			}
		}

		for _, ch := range g.Comps[inner].Children {
			if g.HasExit(ch, Continue) {
				return false
			}
		}
	}

	if g.IsIterative(lp.Body) && lp.Iterations == IterationsUnknown {
		return false
	}

	return true
}

// Verify checks bookkeeping consistency of c and everything inside it.
func (g *Graph) Verify(c CompID) (err error) {
	g.Walk(c, func(x CompID) bool {
		err = g.verifyComponent(x)
		if err != nil {
			err = errors.Wrap(err, "%v", g.Describe(x))
		}

		return err == nil
	})

	return err
}

func (g *Graph) verifyComponent(c CompID) error {
	x := g.Comps[c]

	for _, p := range x.PortList() {
		y := g.Ports[p]

		if y.Owner != c {
			return errors.New("port %d owned by %d", p, y.Owner)
		}

		if y.Bus != Nil && !g.Buses[y.Bus].Ports.IsSet(p) {
			return errors.New("port %d not in ports of bus %d", p, y.Bus)
		}
	}

	for _, e := range x.Exits {
		y := g.Exits[e]

		if v := g.Buses[y.Done].Value; v == nil || v.Size() != 1 {
			return errors.New("exit %v: done bus is not 1 bit", y.Tag)
		}

		var bad error

		y.Driven.Range(func(en EntryID) bool {
			if g.Entries[en].Driving != e {
				bad = errors.New("exit %v drives entry %d driven by %d", y.Tag, en, g.Entries[en].Driving)
			}

			return bad == nil
		})

		if bad != nil {
			return bad
		}
	}

	for _, en := range x.Entries {
		y := g.Entries[en]

		if y.Owner != c {
			return errors.New("entry %d owned by %d", en, y.Owner)
		}

		if y.Driving != Nil && !g.Exits[y.Driving].Driven.IsSet(en) {
			return errors.New("entry %d missing in driven set of exit %d", en, y.Driving)
		}

		for p, deps := range y.Deps {
			if g.Ports[p].Owner != c {
				return errors.New("entry %d: foreign port %d", en, p)
			}

			for _, d := range deps {
				z := g.Deps[d]

				if z.Removed || z.Port != p || z.Entry != en {
					return errors.New("entry %d: stale dependency %d", en, d)
				}

				if !g.Buses[z.Bus].Dependents.IsSet(d) {
					return errors.New("dependency %d missing in dependents of bus %d", d, z.Bus)
				}
			}
		}
	}

	return nil
}
