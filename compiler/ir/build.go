package ir

import (
	"tlog.app/go/errors"
	"tlog.app/go/loc"

	"github.com/orcc/xronos-sub001/compiler/tp"
	"github.com/orcc/xronos-sub001/compiler/value"
)

type (
	// InBuf is the payload of a module entry buffer.
	// Its DONE exit done bus is the module go signal.
	InBuf struct {
		Clock BusID
		Reset BusID
	}
)

var (
	ErrAlreadySized = errors.New("already sized")
	ErrBadSize      = errors.New("size must be positive")
	ErrNotChild     = errors.New("not a child component")
)

// NewComponent allocates a leaf component with its clock, reset and go ports.
func (g *Graph) NewComponent(k Kind, name string) CompID {
	return g.newComponent(k, name, loc.Caller(1))
}

// NewModule allocates a module of kind k together with its InBuf.
func (g *Graph) NewModule(k Kind, name string) CompID {
	if !k.IsModule() {
		panic(k)
	}

	return g.newModule(k, name, loc.Caller(1))
}

func (g *Graph) newComponent(k Kind, name string, from loc.PC) CompID {
	c := CompID(len(g.Comps))

	g.Comps = append(g.Comps, &Component{
		Kind:  k,
		Name:  name,
		Owner: Nil,
		InBuf: Nil,
		From:  from,
	})

	x := g.Comps[c]

	x.Clock = g.newPort(c, tp.Bool)
	x.Reset = g.newPort(c, tp.Bool)
	x.Go = g.newPort(c, tp.Bool)

	return c
}

func (g *Graph) newModule(k Kind, name string, from loc.PC) CompID {
	m := g.newComponent(k, name, from)

	ib := g.newComponent(KindInBuf, "", from)
	g.Comps[ib].Owner = m
	g.Comps[m].InBuf = ib

	e := g.MakeExit(ib, Done, "")

	x := &InBuf{
		Clock: g.newBus(e, tp.Bool),
		Reset: g.newBus(e, tp.Bool),
	}
	g.Comps[ib].X = x

	mod := g.Comps[m]

	g.peer(mod.Clock, x.Clock)
	g.peer(mod.Reset, x.Reset)
	g.peer(mod.Go, g.Exits[e].Done)

	return m
}

func (g *Graph) newPort(c CompID, t tp.Int) PortID {
	p := PortID(len(g.Ports))

	g.Ports = append(g.Ports, &Port{
		Owner: c,
		Bus:   Nil,
		Peer:  Nil,
	})

	if t.Bits != 0 {
		g.Ports[p].Value = value.New(t.Size(), t.Signed)
	}

	return p
}

func (g *Graph) newBus(e ExitID, t tp.Int) BusID {
	b := BusID(len(g.Buses))

	g.Buses = append(g.Buses, &Bus{
		Owner: e,
		Peer:  Nil,
	})

	if t.Bits != 0 {
		g.Buses[b].Value = value.New(t.Size(), t.Signed)
	}

	return b
}

func (g *Graph) peer(p PortID, b BusID) {
	g.Ports[p].Peer = b
	g.Buses[b].Peer = p
}

// MakeDataPort adds a data port to c. A zero t leaves it unsized.
// For a module the matching InBuf data bus is created and peered.
func (g *Graph) MakeDataPort(c CompID, t tp.Int) PortID {
	p := g.newPort(c, t)

	x := g.Comps[c]
	x.Data = append(x.Data, p)

	if x.Kind.IsModule() {
		e := g.MainExit(x.InBuf)
		b := g.newBus(e, t)
		g.Exits[e].Data = append(g.Exits[e].Data, b)

		g.peer(p, b)
	}

	return p
}

// MakeDataBus adds a data bus to e. A zero t leaves it unsized.
// For a module exit the matching OutBuf data port is created and peered.
func (g *Graph) MakeDataBus(e ExitID, t tp.Int) BusID {
	b := g.newBus(e, t)

	x := g.Exits[e]
	x.Data = append(x.Data, b)

	if x.Peer != Nil {
		ob := g.Comps[x.Peer]

		p := g.newPort(x.Peer, t)
		ob.Data = append(ob.Data, p)

		g.peer(p, b)
	}

	return b
}

// MakeExit adds an exit with a 1-bit done bus and data buses of the given types.
// For a module the exit gets its OutBuf.
// Tags are unique per component.
func (g *Graph) MakeExit(c CompID, typ ExitType, label string, data ...tp.Int) ExitID {
	t := Tag{Type: typ, Label: label}

	if g.ExitByTag(c, t) != Nil {
		g.invariant(c, "duplicate exit %v", t)
	}

	e := ExitID(len(g.Exits))

	g.Exits = append(g.Exits, &Exit{
		Tag:     t,
		Owner:   c,
		Latency: Latency{},
		Peer:    Nil,
	})

	g.Exits[e].Done = g.newBus(e, tp.Bool)

	x := g.Comps[c]
	x.Exits = append(x.Exits, e)

	if x.Kind.IsModule() {
		ob := g.newComponent(KindOutBuf, "", x.From)
		g.Comps[ob].Owner = c
		g.Exits[e].Peer = ob

		g.peer(g.Comps[ob].Go, g.Exits[e].Done)
	}

	for _, t := range data {
		g.MakeDataBus(e, t)
	}

	return e
}

// AddComponent appends c to the children of module m.
func (g *Graph) AddComponent(m, c CompID) {
	g.insertComponent(m, c, len(g.Comps[m].Children))
}

func (g *Graph) insertComponent(m, c CompID, i int) {
	x := g.Comps[m]
	if !x.Kind.IsModule() {
		g.invariant(m, "add component to %v", x.Kind)
	}

	if o := g.Comps[c].Owner; o != Nil {
		g.invariant(c, "component already owned by %v", g.Describe(o))
	}

	x.Children = append(x.Children, Nil)
	copy(x.Children[i+1:], x.Children[i:])
	x.Children[i] = c

	g.Comps[c].Owner = m
}

// MakeEntry adds an activation path to c driven by exit driving, which may be Nil.
func (g *Graph) MakeEntry(c CompID, driving ExitID) EntryID {
	en := EntryID(len(g.Entries))

	g.Entries = append(g.Entries, &Entry{
		Owner:   c,
		Driving: Nil,
		Deps:    map[PortID][]DepID{},
	})

	g.Comps[c].Entries = append(g.Comps[c].Entries, en)

	g.SetDrivingExit(en, driving)

	return en
}

// SetDrivingExit rebinds en keeping driven sets of both exits consistent.
func (g *Graph) SetDrivingExit(en EntryID, e ExitID) {
	x := g.Entries[en]

	if x.Driving != Nil {
		g.Exits[x.Driving].Driven.Clear(en)
	}

	x.Driving = e

	if e != Nil {
		g.Exits[e].Driven.Set(en)
	}
}

// AddDependency records that port p reads bus b when entered through en.
func (g *Graph) AddDependency(en EntryID, p PortID, k DepKind, b BusID) DepID {
	x := g.Entries[en]

	if g.Ports[p].Owner != x.Owner {
		g.invariant(x.Owner, "dependency on port %d of %v", p, g.Describe(g.Ports[p].Owner))
	}

	if g.Buses[b].Removed {
		g.invariant(x.Owner, "dependency on removed bus %d", b)
	}

	d := DepID(len(g.Deps))

	g.Deps = append(g.Deps, &Dependency{
		Kind:  k,
		Bus:   b,
		Port:  p,
		Entry: en,
	})

	x.Deps[p] = append(x.Deps[p], d)
	g.Buses[b].Dependents.Set(d)

	return d
}

// AddControlDependencies wires the clock, reset and go ports of the owner of en.
func (g *Graph) AddControlDependencies(en EntryID, clock, reset, goBus BusID) {
	x := g.Comps[g.Entries[en].Owner]

	g.AddDependency(en, x.Clock, Clock, clock)
	g.AddDependency(en, x.Reset, Reset, reset)
	g.AddDependency(en, x.Go, Control, goBus)
}

// Connect makes b the physical driver of p.
func (g *Graph) Connect(p PortID, b BusID) {
	g.Disconnect(p)

	g.Ports[p].Bus = b
	g.Buses[b].Ports.Set(p)
}

// Disconnect drops the physical driver of p.
func (g *Graph) Disconnect(p PortID) {
	x := g.Ports[p]
	if x.Bus == Nil {
		return
	}

	g.Buses[x.Bus].Ports.Clear(p)
	x.Bus = Nil
}

// SetPortSize sizes an unsized port.
func (g *Graph) SetPortSize(p PortID, size int, signed bool) error {
	x := g.Ports[p]

	switch {
	case x.Value != nil:
		return errors.Wrap(ErrAlreadySized, "port %d", p)
	case size < 1:
		return errors.Wrap(ErrBadSize, "port %d: %d", p, size)
	}

	x.Value = value.New(size, signed)

	return nil
}

// SetBusSize sizes an unsized bus.
func (g *Graph) SetBusSize(b BusID, size int, signed bool) error {
	x := g.Buses[b]

	switch {
	case x.Value != nil:
		return errors.Wrap(ErrAlreadySized, "bus %d", b)
	case size < 1:
		return errors.Wrap(ErrBadSize, "bus %d: %d", b, size)
	}

	x.Value = value.New(size, signed)

	return nil
}

// ClockBus, ResetBus and GoBus are the control sources inside module m.
func (g *Graph) ClockBus(m CompID) BusID {
	return g.Comps[g.Comps[m].InBuf].X.(*InBuf).Clock
}

func (g *Graph) ResetBus(m CompID) BusID {
	return g.Comps[g.Comps[m].InBuf].X.(*InBuf).Reset
}

func (g *Graph) GoBus(m CompID) BusID {
	return g.Exits[g.InBufExit(m)].Done
}

// InBufExit is the exit children of m are entered from.
func (g *Graph) InBufExit(m CompID) ExitID {
	return g.MainExit(g.Comps[m].InBuf)
}

// InBufData returns the bus inside m continuing data port i of m.
func (g *Graph) InBufData(m CompID, i int) BusID {
	return g.Exits[g.InBufExit(m)].Data[i]
}

// OutBufData returns the port inside m continuing data bus i of module exit e.
func (g *Graph) OutBufData(e ExitID, i int) PortID {
	return g.Comps[g.Exits[e].Peer].Data[i]
}

// OutBufEntry makes an entry into the OutBuf of module exit e.
func (g *Graph) OutBufEntry(e ExitID, driving ExitID) EntryID {
	return g.MakeEntry(g.Exits[e].Peer, driving)
}

// OutBufs returns the OutBufs of m in exit order.
func (g *Graph) OutBufs(m CompID) (r []CompID) {
	for _, e := range g.Comps[m].Exits {
		if p := g.Exits[e].Peer; p != Nil {
			r = append(r, p)
		}
	}

	return r
}
