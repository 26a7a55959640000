package ir

import "fmt"

type (
	// Latency is the number of clocks from activation to exit.
	// Max < 0 means unbounded.
	Latency struct {
		Min int
		Max int
	}
)

var (
	LatencyZero = Latency{}
	LatencyOne  = Latency{Min: 1, Max: 1}
)

func Fixed(n int) Latency { return Latency{Min: n, Max: n} }

func Open(min int) Latency { return Latency{Min: min, Max: -1} }

func (l Latency) IsFixed() bool {
	return l.Min == l.Max
}

func (l Latency) IsOpen() bool {
	return l.Max < 0
}

// Add is the latency of l followed by r.
func (l Latency) Add(r Latency) Latency {
	s := Latency{Min: l.Min + r.Min, Max: l.Max + r.Max}

	if l.IsOpen() || r.IsOpen() {
		s.Max = -1
	}

	return s
}

// Latest is the latency of whichever of l and r finishes last.
func (l Latency) Latest(r Latency) Latency {
	s := l

	if r.Min > s.Min {
		s.Min = r.Min
	}

	switch {
	case l.IsOpen() || r.IsOpen():
		s.Max = -1
	case r.Max > s.Max:
		s.Max = r.Max
	}

	return s
}

func (l Latency) String() string {
	switch {
	case l.IsOpen():
		return fmt.Sprintf("%d..", l.Min)
	case l.IsFixed():
		return fmt.Sprintf("%d", l.Min)
	default:
		return fmt.Sprintf("%d..%d", l.Min, l.Max)
	}
}
