package ir

import (
	"github.com/orcc/xronos-sub001/compiler/set"
	"github.com/orcc/xronos-sub001/compiler/value"
)

type (
	cloneMap struct {
		comps   map[CompID]CompID
		ports   map[PortID]PortID
		buses   map[BusID]BusID
		exits   map[ExitID]ExitID
		entries map[EntryID]EntryID
		deps    map[DepID]DepID
	}
)

// Clone deep copies c and everything inside it.
// The copy has no owner and no entries of its own; connections
// inside the subtree are recreated, connections leaving it are dropped.
// Port and bus values keep only their constant and don't care bits.
func (g *Graph) Clone(c CompID) CompID {
	m := &cloneMap{
		comps:   map[CompID]CompID{},
		ports:   map[PortID]PortID{},
		buses:   map[BusID]BusID{},
		exits:   map[ExitID]ExitID{},
		entries: map[EntryID]EntryID{},
		deps:    map[DepID]DepID{},
	}

	var subtree []CompID

	g.Walk(c, func(x CompID) bool {
		subtree = append(subtree, x)
		return true
	})

	// allocate
	for _, x := range subtree {
		g.allocClone(m, x, x != c)
	}

	// rewire
	for _, x := range subtree {
		g.rewireClone(m, x)
	}

	n := m.comps[c]
	g.Comps[n].Owner = Nil

	return n
}

func (g *Graph) allocClone(m *cloneMap, c CompID, withEntries bool) {
	old := g.Comps[c]

	n := CompID(len(g.Comps))
	cp := *old
	g.Comps = append(g.Comps, &cp)
	m.comps[c] = n

	for _, p := range g.PortsOf(c) {
		q := PortID(len(g.Ports))
		pc := *g.Ports[p]
		g.Ports = append(g.Ports, &pc)
		m.ports[p] = q
	}

	for _, e := range old.Exits {
		f := ExitID(len(g.Exits))
		ec := *g.Exits[e]
		g.Exits = append(g.Exits, &ec)
		m.exits[e] = f

		for _, b := range g.ExitBuses(e) {
			nb := BusID(len(g.Buses))
			bc := *g.Buses[b]
			g.Buses = append(g.Buses, &bc)
			m.buses[b] = nb
		}
	}

	if !withEntries {
		cp.Entries = nil
		return
	}

	for _, en := range old.Entries {
		ne := EntryID(len(g.Entries))
		ec := *g.Entries[en]
		g.Entries = append(g.Entries, &ec)
		m.entries[en] = ne

		for _, deps := range g.Entries[en].Deps {
			for _, d := range deps {
				nd := DepID(len(g.Deps))
				dc := *g.Deps[d]
				g.Deps = append(g.Deps, &dc)
				m.deps[d] = nd
			}
		}
	}
}

func (g *Graph) rewireClone(m *cloneMap, c CompID) {
	x := g.Comps[m.comps[c]]

	x.Owner = m.comp(x.Owner)
	x.Clock = m.ports[x.Clock]
	x.Reset = m.ports[x.Reset]
	x.Go = m.ports[x.Go]
	x.Data = mapAll(x.Data, m.ports)
	x.Exits = mapAll(x.Exits, m.exits)
	x.Entries = mapAll(x.Entries, m.entries)
	x.InBuf = m.comp(x.InBuf)
	x.Children = mapAll(x.Children, m.comps)
	x.X = m.payload(x.X)

	for _, p := range x.PortList() {
		y := g.Ports[p]

		y.Owner = m.comps[c]
		y.Bus = m.bus(y.Bus)
		y.Peer = m.bus(y.Peer)
		y.Value = generic(y.Value)
		y.Forced = false
	}

	for _, e := range x.Exits {
		y := g.Exits[e]

		y.Owner = m.comps[c]
		y.Done = m.buses[y.Done]
		y.Data = mapAll(y.Data, m.buses)
		y.Driven = mapSet(y.Driven, m.entries)
		y.Peer = m.comp(y.Peer)

		for _, b := range g.ExitBuses(e) {
			z := g.Buses[b]

			z.Owner = e
			z.Peer = m.port(z.Peer)
			z.Ports = mapSet(z.Ports, m.ports)
			z.Dependents = mapSet(z.Dependents, m.deps)
			z.Value = generic(z.Value)
			z.Forced = false
		}
	}

	for _, en := range x.Entries {
		y := g.Entries[en]

		y.Owner = m.comps[c]
		y.Driving = m.exit(y.Driving)

		deps := make(map[PortID][]DepID, len(y.Deps))

		for p, l := range y.Deps {
			var nl []DepID

			for _, d := range l {
				nd := m.deps[d]
				z := g.Deps[nd]

				nb, ok := m.buses[z.Bus]
				if !ok {
					z.Removed = true
					continue
				}

				z.Bus = nb
				z.Port = m.ports[p]
				z.Entry = en

				nl = append(nl, nd)
			}

			if len(nl) != 0 {
				deps[m.ports[p]] = nl
			}
		}

		y.Deps = deps
	}
}

// PortList returns the control ports followed by the data ports.
func (x *Component) PortList() []PortID {
	return append([]PortID{x.Clock, x.Reset, x.Go}, x.Data...)
}

func (m *cloneMap) payload(x any) any {
	switch x := x.(type) {
	case nil:
		return nil
	case *InBuf:
		return &InBuf{Clock: m.buses[x.Clock], Reset: m.buses[x.Reset]}
	case *Const:
		return &Const{Value: x.Value.Copy()}
	case *Cast:
		c := *x
		return &c
	case *Reg:
		r := &Reg{}
		if x.Init != nil {
			r.Init = x.Init.Copy()
		}

		return r
	case *Block:
		return &Block{Seq: mapAll(x.Seq, m.comps), ProcBody: x.ProcBody}
	case *Decision:
		return &Decision{
			TestBlock: m.comp(x.TestBlock),
			Test:      m.comp(x.Test),
			Not:       m.comp(x.Not),
			TrueAnd:   m.comp(x.TrueAnd),
			FalseAnd:  m.comp(x.FalseAnd),
		}
	case *Branch:
		return &Branch{Decision: m.comp(x.Decision), True: m.comp(x.True), False: m.comp(x.False)}
	case *LoopBody:
		return &LoopBody{
			Decision:      m.comp(x.Decision),
			Body:          m.comp(x.Body),
			Update:        m.comp(x.Update),
			DecisionFirst: x.DecisionFirst,
		}
	case *Loop:
		return &Loop{
			Init:          m.comp(x.Init),
			Body:          m.comp(x.Body),
			Control:       m.comp(x.Control),
			Regs:          mapAll(x.Regs, m.comps),
			InitEntry:     m.entry(x.InitEntry),
			FeedbackEntry: m.entry(x.FeedbackEntry),
			Iterations:    x.Iterations,
		}
	default:
		panic(x)
	}
}

func (m *cloneMap) comp(c CompID) CompID    { return lookup(m.comps, c) }
func (m *cloneMap) port(p PortID) PortID    { return lookup(m.ports, p) }
func (m *cloneMap) bus(b BusID) BusID       { return lookup(m.buses, b) }
func (m *cloneMap) exit(e ExitID) ExitID    { return lookup(m.exits, e) }
func (m *cloneMap) entry(e EntryID) EntryID { return lookup(m.entries, e) }

func lookup[K ~int32](m map[K]K, k K) K {
	if v, ok := m[k]; ok {
		return v
	}

	return Nil
}

func mapAll[K ~int32](l []K, m map[K]K) []K {
	if l == nil {
		return nil
	}

	r := make([]K, 0, len(l))

	for _, k := range l {
		if v, ok := m[k]; ok {
			r = append(r, v)
		}
	}

	return r
}

func mapSet[K ~int32](s set.Bits[K], m map[K]K) (r set.Bits[K]) {
	s.Range(func(k K) bool {
		if v, ok := m[k]; ok {
			r.Set(v)
		}

		return true
	})

	return r
}

func generic(v *value.Value) *value.Value {
	if v == nil {
		return nil
	}

	return v.Generic()
}
