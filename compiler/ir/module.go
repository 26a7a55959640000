package ir

type (
	// ExitMap groups child exits by tag keeping first seen order.
	ExitMap struct {
		tags  []Tag
		exits map[Tag][]ExitID
	}
)

func (m *ExitMap) Add(e ExitID, t Tag) {
	if m.exits == nil {
		m.exits = map[Tag][]ExitID{}
	}

	if _, ok := m.exits[t]; !ok {
		m.tags = append(m.tags, t)
	}

	m.exits[t] = append(m.exits[t], e)
}

func (m *ExitMap) Get(t Tag) []ExitID {
	return m.exits[t]
}

// Remove deletes and returns the exits tagged t.
func (m *ExitMap) Remove(t Tag) []ExitID {
	l, ok := m.exits[t]
	if !ok {
		return nil
	}

	delete(m.exits, t)
	m.tags = without(m.tags, t)

	return l
}

func (m *ExitMap) Tags() []Tag {
	return append([]Tag(nil), m.tags...)
}

func (m *ExitMap) Len() int {
	return len(m.tags)
}

// CollectExits adds every exit of c to m.
func (g *Graph) CollectExits(c CompID, m *ExitMap) {
	for _, e := range g.Comps[c].Exits {
		m.Add(e, g.Exits[e].Tag)
	}
}

// MergeExits turns every group of child exits in m into one exit of module mod.
// The exit OutBuf gets one entry per child exit, gated by its done bus.
func (g *Graph) MergeExits(mod CompID, m *ExitMap) {
	clock, reset := g.ClockBus(mod), g.ResetBus(mod)

	for _, t := range m.tags {
		e := g.ExitByTag(mod, t)
		if e == Nil {
			e = g.MakeExit(mod, t.Type, t.Label)
		}

		for _, ce := range m.exits[t] {
			en := g.OutBufEntry(e, ce)
			g.AddControlDependencies(en, clock, reset, g.Exits[ce].Done)

			g.Exits[e].Latency = g.Exits[e].Latency.Latest(g.Exits[ce].Latency)
		}
	}
}
