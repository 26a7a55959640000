package ir

import (
	"tlog.app/go/errors"
)

// RemoveDependency unlinks d from its entry and its source bus.
func (g *Graph) RemoveDependency(d DepID) {
	x := g.Deps[d]
	if x.Removed {
		return
	}

	en := g.Entries[x.Entry]
	en.Deps[x.Port] = without(en.Deps[x.Port], d)

	if len(en.Deps[x.Port]) == 0 {
		delete(en.Deps, x.Port)
	}

	g.Buses[x.Bus].Dependents.Clear(d)

	x.Removed = true
}

// RemoveEntry drops every dependency of en and detaches it from its driving exit.
func (g *Graph) RemoveEntry(en EntryID) {
	x := g.Entries[en]
	if x.Removed {
		return
	}

	g.clearDependencies(en)
	g.SetDrivingExit(en, Nil)

	c := g.Comps[x.Owner]
	c.Entries = without(c.Entries, en)

	x.Removed = true
}

func (g *Graph) clearDependencies(en EntryID) {
	x := g.Entries[en]

	for p, deps := range x.Deps {
		for _, d := range append([]DepID(nil), deps...) {
			g.RemoveDependency(d)
		}

		delete(x.Deps, p)
	}
}

// DisconnectComponent scrubs every reference between c and the rest of the graph.
// Entries are removed, ports lose their drivers, entries driven by the exits of c
// lose their driving exit, and dependencies on buses of c are removed.
func (g *Graph) DisconnectComponent(c CompID) {
	x := g.Comps[c]

	for _, en := range append([]EntryID(nil), x.Entries...) {
		g.RemoveEntry(en)
	}

	for _, p := range g.PortsOf(c) {
		g.Disconnect(p)
	}

	for _, e := range x.Exits {
		g.disconnectExit(e)
	}
}

func (g *Graph) disconnectExit(e ExitID) {
	x := g.Exits[e]

	x.Driven.Copy().Range(func(en EntryID) bool {
		g.SetDrivingExit(en, Nil)
		return true
	})

	for _, b := range g.ExitBuses(e) {
		g.disconnectBus(b)
	}
}

func (g *Graph) disconnectBus(b BusID) {
	x := g.Buses[b]

	x.Dependents.Copy().Range(func(d DepID) bool {
		g.RemoveDependency(d)
		return true
	})

	x.Ports.Copy().Range(func(p PortID) bool {
		g.Disconnect(p)
		return true
	})
}

// RemoveComponent disconnects child c and takes it out of module m,
// clearing any named slot of m it occupied.
func (g *Graph) RemoveComponent(m, c CompID) error {
	mod := g.Comps[m]

	i := index(mod.Children, c)
	if i < 0 {
		return errors.Wrap(ErrNotChild, "remove %v from %v", g.Describe(c), g.Describe(m))
	}

	g.DisconnectComponent(c)

	mod.Children = append(mod.Children[:i], mod.Children[i+1:]...)

	g.rebind(m, c, Nil)

	g.Comps[c].Owner = Nil
	g.Comps[c].Removed = true

	return nil
}

// ReplaceComponent puts n in place of child old of m.
// Old is disconnected, n takes its position and named slot.
// Wiring n is up to the caller.
func (g *Graph) ReplaceComponent(m, old, n CompID) error {
	mod := g.Comps[m]

	i := index(mod.Children, old)
	if i < 0 {
		return errors.Wrap(ErrNotChild, "replace %v in %v", g.Describe(old), g.Describe(m))
	}

	if o := g.Comps[n].Owner; o != Nil {
		return errors.New("replace with %v: already owned by %v", g.Describe(n), g.Describe(o))
	}

	g.DisconnectComponent(old)

	mod.Children[i] = n

	g.rebind(m, old, n)

	g.Comps[n].Owner = m

	g.Comps[old].Owner = Nil
	g.Comps[old].Removed = true

	return nil
}

// rebind updates the named slots of m holding old.
// Decision.Test names a grandchild, so ancestors are checked too.
func (g *Graph) rebind(m, old, n CompID) {
	if s, ok := g.Comps[m].X.(slotter); ok {
		s.replace(old, n)
	}

	for a := g.Comps[m].Owner; a != Nil; a = g.Comps[a].Owner {
		if d, ok := g.Comps[a].X.(*Decision); ok {
			swap(&d.Test, old, n)
		}
	}
}

// RemoveExit disconnects e and deletes it from its owner together with its OutBuf.
func (g *Graph) RemoveExit(e ExitID) {
	x := g.Exits[e]
	if x.Removed {
		return
	}

	g.disconnectExit(e)

	c := g.Comps[x.Owner]
	c.Exits = without(c.Exits, e)

	if x.Peer != Nil {
		g.DisconnectComponent(x.Peer)
		g.Comps[x.Peer].Owner = Nil
		g.Comps[x.Peer].Removed = true
	}

	for _, b := range g.ExitBuses(e) {
		g.Buses[b].Removed = true
	}

	x.Removed = true
}

// ChangeExit retags e.
func (g *Graph) ChangeExit(e ExitID, typ ExitType, label string) {
	x := g.Exits[e]
	t := Tag{Type: typ, Label: label}

	if o := g.ExitByTag(x.Owner, t); o != Nil && o != e {
		g.invariant(x.Owner, "change exit %v: duplicate %v", x.Tag, t)
	}

	x.Tag = t
}

// RemoveDataPort deletes data port p of its owner.
// For a module the peer InBuf bus goes as well.
func (g *Graph) RemoveDataPort(p PortID) {
	x := g.Ports[p]
	c := g.Comps[x.Owner]

	g.Disconnect(p)

	for _, en := range c.Entries {
		for _, d := range append([]DepID(nil), g.Entries[en].Deps[p]...) {
			g.RemoveDependency(d)
		}
	}

	c.Data = without(c.Data, p)

	if c.Kind.IsModule() && x.Peer != Nil {
		b := x.Peer
		e := g.Buses[b].Owner

		g.disconnectBus(b)
		g.Exits[e].Data = without(g.Exits[e].Data, b)
		g.Buses[b].Removed = true
	}

	x.Removed = true
}

// RemoveDataBus deletes data bus b of its exit.
// For a module exit the peer OutBuf port goes as well.
func (g *Graph) RemoveDataBus(b BusID) {
	x := g.Buses[b]
	e := g.Exits[x.Owner]

	g.disconnectBus(b)

	e.Data = without(e.Data, b)

	if e.Peer != Nil && x.Peer != Nil {
		g.RemoveDataPort(x.Peer)
	}

	x.Removed = true
}

func index[T comparable](l []T, x T) int {
	for i, y := range l {
		if y == x {
			return i
		}
	}

	return -1
}

func without[T comparable](l []T, x T) []T {
	i := index(l, x)
	if i < 0 {
		return l
	}

	return append(l[:i], l[i+1:]...)
}
