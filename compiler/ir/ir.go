package ir

import (
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog/tlwire"

	"github.com/orcc/xronos-sub001/compiler/set"
	"github.com/orcc/xronos-sub001/compiler/value"
)

type (
	CompID  int32
	PortID  int32
	BusID   int32
	ExitID  int32
	EntryID int32
	DepID   int32

	Kind     uint8
	ExitType uint8
	DepKind  uint8

	// Tag names an Exit of a component.
	Tag struct {
		Type  ExitType
		Label string
	}

	// Graph is an arena of components and their terminals.
	// All cross references are handles into it.
	Graph struct {
		Comps   []*Component
		Ports   []*Port
		Buses   []*Bus
		Exits   []*Exit
		Entries []*Entry
		Deps    []*Dependency
	}

	Component struct {
		Kind  Kind
		Name  string
		Owner CompID

		Clock PortID
		Reset PortID
		Go    PortID
		Data  []PortID

		Exits   []ExitID
		Entries []EntryID

		// modules only
		InBuf    CompID
		Children []CompID

		// X is the kind specific payload:
		// *InBuf, *Const, *Cast, *Reg, *Block, *Decision, *Branch, *LoopBody or *Loop.
		X any

		Removed bool

		From loc.PC
	}

	Port struct {
		Owner CompID
		Name  string

		Bus  BusID // physical driver
		Peer BusID // continuation across a module boundary

		Value  *value.Value
		Forced bool

		Removed bool
	}

	Bus struct {
		Owner ExitID
		Name  string

		Peer PortID

		Ports      set.Bits[PortID] // physically driven
		Dependents set.Bits[DepID]  // logically driven

		Value  *value.Value
		Forced bool

		Removed bool
	}

	Exit struct {
		Tag   Tag
		Owner CompID

		Done BusID
		Data []BusID

		Latency Latency

		Driven set.Bits[EntryID]

		Peer CompID // OutBuf of a module exit

		Removed bool
	}

	// Entry is one way a component can be activated.
	// It binds the component ports to the buses feeding them
	// when the component is entered from the Driving exit.
	Entry struct {
		Owner   CompID
		Driving ExitID

		Deps map[PortID][]DepID

		Removed bool
	}

	Dependency struct {
		Kind DepKind

		Bus   BusID // logical source
		Port  PortID
		Entry EntryID

		Removed bool
	}
)

const Nil = -1

const (
	KindInBuf Kind = iota
	KindOutBuf
	KindConstant
	KindNoOp
	KindAnd
	KindOr
	KindNot
	KindAndOp
	KindOrOp
	KindXorOp
	KindComplementOp
	KindCastOp
	KindReg
	KindModule
	KindBlock
	KindDecision
	KindBranch
	KindLoopBody
	KindLoop

	numKinds
)

const (
	Done ExitType = iota
	Break
	Return
	Continue
	Exception
	Sideband
)

const (
	Data DepKind = iota
	Control
	Clock
	Reset
)

var kindNames = [numKinds]string{
	KindInBuf:        "inbuf",
	KindOutBuf:       "outbuf",
	KindConstant:     "constant",
	KindNoOp:         "noop",
	KindAnd:          "and",
	KindOr:           "or",
	KindNot:          "not",
	KindAndOp:        "and_op",
	KindOrOp:         "or_op",
	KindXorOp:        "xor_op",
	KindComplementOp: "complement_op",
	KindCastOp:       "cast_op",
	KindReg:          "reg",
	KindModule:       "module",
	KindBlock:        "block",
	KindDecision:     "decision",
	KindBranch:       "branch",
	KindLoopBody:     "loop_body",
	KindLoop:         "loop",
}

func New() *Graph {
	return &Graph{}
}

func (k Kind) IsModule() bool {
	return k >= KindModule && k < numKinds
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func (t ExitType) String() string {
	switch t {
	case Done:
		return "done"
	case Break:
		return "break"
	case Return:
		return "return"
	case Continue:
		return "continue"
	case Exception:
		return "exception"
	case Sideband:
		return "sideband"
	default:
		return fmt.Sprintf("ExitType(%d)", int(t))
	}
}

func (k DepKind) String() string {
	switch k {
	case Data:
		return "data"
	case Control:
		return "control"
	case Clock:
		return "clock"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("DepKind(%d)", int(k))
	}
}

func (t Tag) String() string {
	if t.Label == "" {
		return t.Type.String()
	}

	return t.Type.String() + ":" + t.Label
}

func (t Tag) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendFormat(b, "%v", t)
}

// Owner converts a bus handle to the owner recorded in values.
func (b BusID) Owner() value.Owner {
	return value.Owner(b)
}

func (g *Graph) Comp(c CompID) *Component {
	return g.Comps[c]
}

func (g *Graph) Port(p PortID) *Port {
	return g.Ports[p]
}

func (g *Graph) Bus(b BusID) *Bus {
	return g.Buses[b]
}

func (g *Graph) Exit(e ExitID) *Exit {
	return g.Exits[e]
}

func (g *Graph) Entry(en EntryID) *Entry {
	return g.Entries[en]
}

func (g *Graph) Dep(d DepID) *Dependency {
	return g.Deps[d]
}

func (g *Graph) Kind(c CompID) Kind {
	return g.Comps[c].Kind
}

func (g *Graph) BusOwner(b BusID) CompID {
	return g.Exits[g.Buses[b].Owner].Owner
}

func (g *Graph) PortOwner(p PortID) CompID {
	return g.Ports[p].Owner
}

func (g *Graph) ExitOwner(e ExitID) CompID {
	return g.Exits[e].Owner
}

func (g *Graph) EntryOwner(en EntryID) CompID {
	return g.Entries[en].Owner
}

// PortsOf returns the control ports followed by the data ports.
func (g *Graph) PortsOf(c CompID) []PortID {
	return g.Comps[c].PortList()
}

// BusesOf returns every bus of every exit of c.
func (g *Graph) BusesOf(c CompID) (r []BusID) {
	for _, e := range g.Comps[c].Exits {
		r = append(r, g.ExitBuses(e)...)
	}

	return r
}

// ExitBuses returns the done bus, the data buses and, for an InBuf,
// the clock and reset buses.
func (g *Graph) ExitBuses(e ExitID) []BusID {
	x := g.Exits[e]

	r := append([]BusID{x.Done}, x.Data...)

	if ib, ok := g.Comps[x.Owner].X.(*InBuf); ok {
		r = append(r, ib.Clock, ib.Reset)
	}

	return r
}

// ExitByTag returns the exit of c with tag t or Nil.
func (g *Graph) ExitByTag(c CompID, t Tag) ExitID {
	for _, e := range g.Comps[c].Exits {
		if g.Exits[e].Tag == t {
			return e
		}
	}

	return Nil
}

// MainExit returns the unlabeled DONE exit of c or Nil.
func (g *Graph) MainExit(c CompID) ExitID {
	return g.ExitByTag(c, Tag{Type: Done})
}

// OnlyExit returns the exit of a single exit component.
func (g *Graph) OnlyExit(c CompID) ExitID {
	x := g.Comps[c]
	if len(x.Exits) != 1 {
		g.invariant(c, "%v has %d exits, want exactly one", x.Kind, len(x.Exits))
	}

	return x.Exits[0]
}

// ResultBus returns the first data bus of the main exit.
func (g *Graph) ResultBus(c CompID) BusID {
	e := g.MainExit(c)
	if e == Nil || len(g.Exits[e].Data) == 0 {
		return Nil
	}

	return g.Exits[e].Data[0]
}

func (g *Graph) DoneBus(e ExitID) BusID {
	return g.Exits[e].Done
}

// DepsOf returns dependencies of port p in entry en.
func (g *Graph) DepsOf(en EntryID, p PortID) []DepID {
	return g.Entries[en].Deps[p]
}

// AllDeps returns dependencies of port p over all entries of its owner.
func (g *Graph) AllDeps(p PortID) (r []DepID) {
	for _, en := range g.Comps[g.Ports[p].Owner].Entries {
		r = append(r, g.Entries[en].Deps[p]...)
	}

	return r
}

// IsDataPort reports whether p is one of the data ports of its owner.
func (g *Graph) IsDataPort(p PortID) bool {
	for _, q := range g.Comps[g.Ports[p].Owner].Data {
		if q == p {
			return true
		}
	}

	return false
}

func (g *Graph) Describe(c CompID) string {
	x := g.Comps[c]
	if x.Name != "" {
		return fmt.Sprintf("%v#%d(%s)", x.Kind, c, x.Name)
	}

	return fmt.Sprintf("%v#%d", x.Kind, c)
}
