package ir

import "github.com/orcc/xronos-sub001/compiler/value"

type (
	Const struct {
		Value *value.Value
	}

	Cast struct {
		Size   int
		Signed bool
	}

	Reg struct {
		Init *value.Value // nil if the register has no initial value
	}

	// Block is a sequence of components executed in order.
	Block struct {
		Seq []CompID

		ProcBody bool
	}

	// Decision evaluates a test and exits through True or False.
	Decision struct {
		TestBlock CompID
		Test      CompID // component of TestBlock producing the condition

		Not      CompID
		TrueAnd  CompID
		FalseAnd CompID
	}

	Branch struct {
		Decision CompID
		True     CompID
		False    CompID
	}

	// LoopBody is one iteration of a loop.
	// It exits through FeedbackTag to iterate again and through CompleteTag to leave.
	LoopBody struct {
		Decision CompID
		Body     CompID
		Update   CompID

		DecisionFirst bool
	}

	Loop struct {
		Init    CompID
		Body    CompID // LoopBody
		Control CompID // Reg closing the feedback path

		Regs []CompID // data registers carried around the loop

		InitEntry     EntryID // body entered from Init
		FeedbackEntry EntryID // body entered from Control

		Iterations int
	}

	slotter interface {
		// replace rebinds a slot holding old to n. Nil n clears it.
		replace(old, n CompID)
	}
)

// IterationsUnknown is the iteration count of a loop with no static bound.
const IterationsUnknown = -1

var (
	TrueTag     = Tag{Type: Done, Label: "true"}
	FalseTag    = Tag{Type: Done, Label: "false"}
	FeedbackTag = Tag{Type: Done, Label: "#feedback#"}
	CompleteTag = Tag{Type: Done}
)

func swap(slot *CompID, old, n CompID) {
	if *slot == old {
		*slot = n
	}
}

func (x *Block) replace(old, n CompID) {
	i := index(x.Seq, old)
	if i < 0 {
		return
	}

	if n == Nil {
		x.Seq = append(x.Seq[:i], x.Seq[i+1:]...)
		return
	}

	x.Seq[i] = n
}

func (x *Decision) replace(old, n CompID) {
	swap(&x.TestBlock, old, n)
	swap(&x.Not, old, n)
	swap(&x.TrueAnd, old, n)
	swap(&x.FalseAnd, old, n)
}

func (x *Branch) replace(old, n CompID) {
	swap(&x.Decision, old, n)
	swap(&x.True, old, n)
	swap(&x.False, old, n)
}

func (x *LoopBody) replace(old, n CompID) {
	swap(&x.Decision, old, n)
	swap(&x.Body, old, n)
	swap(&x.Update, old, n)
}

func (x *Loop) replace(old, n CompID) {
	// body entries go away with the old body
	if x.Body == old {
		x.InitEntry = Nil
		x.FeedbackEntry = Nil
	}

	swap(&x.Init, old, n)
	swap(&x.Body, old, n)
	swap(&x.Control, old, n)

	i := index(x.Regs, old)
	if i < 0 {
		return
	}

	if n == Nil {
		x.Regs = append(x.Regs[:i], x.Regs[i+1:]...)
		return
	}

	x.Regs[i] = n
}
