package ir

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	// LoopPhase is the activation state of a loop body.
	LoopPhase uint8

	LoopEvent uint8
)

const (
	NotEntered LoopPhase = iota
	Iterating
	Complete
)

const (
	EventInit     LoopEvent = iota // entered from the init block
	EventFeedback                  // entered again through the control register
	EventComplete                  // left through the complete exit
)

var ErrLoopTransition = errors.New("invalid loop transition")

func (p LoopPhase) Next(ev LoopEvent) (LoopPhase, error) {
	switch {
	case p == NotEntered && ev == EventInit:
		return Iterating, nil
	case p == Iterating && ev == EventFeedback:
		return Iterating, nil
	case p == Iterating && ev == EventComplete:
		return Complete, nil
	}

	return p, errors.Wrap(ErrLoopTransition, "%v on %v", p, ev)
}

// BodyEntry returns the entry of the loop body taken on event ev, or Nil.
func (g *Graph) BodyEntry(loop CompID, ev LoopEvent) EntryID {
	lp := g.Comps[loop].X.(*Loop)

	switch ev {
	case EventInit:
		return lp.InitEntry
	case EventFeedback:
		return lp.FeedbackEntry
	default:
		return Nil
	}
}

func (p LoopPhase) String() string {
	switch p {
	case NotEntered:
		return "not_entered"
	case Iterating:
		return "iterating"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("LoopPhase(%d)", int(p))
	}
}

func (e LoopEvent) String() string {
	switch e {
	case EventInit:
		return "init"
	case EventFeedback:
		return "feedback"
	case EventComplete:
		return "complete"
	default:
		return fmt.Sprintf("LoopEvent(%d)", int(e))
	}
}
