package parser

import "fmt"

// ActionKind identifies what an Action does.
type ActionKind uint8

const (
	ActionShift ActionKind = iota
	ActionReduce
	ActionAccept
	ActionRecover
)

var actionKindNames = map[ActionKind]string{
	ActionShift:   "shift",
	ActionReduce:  "reduce",
	ActionAccept:  "accept",
	ActionRecover: "recover",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action is one step of the parse table. Only the fields relevant to Kind
// are set.
type Action struct {
	Kind ActionKind

	// Shift
	State      StateID
	Repetition bool

	// Reduce
	Symbol       Symbol
	ChildCount   uint8
	ProductionID uint16
}

// ActionEntry is the ordered chain of actions stored for one
// (state, symbol) pair.
type ActionEntry struct {
	Reusable bool
	Actions  []Action
}

// Shift pushes the lookahead and moves to state.
func Shift(state StateID) Action {
	return Action{Kind: ActionShift, State: state}
}

// ShiftRepeat is a shift that continues a repetition.
func ShiftRepeat(state StateID) Action {
	return Action{Kind: ActionShift, State: state, Repetition: true}
}

// Reduce pops childCount entries into a sym node.
func Reduce(sym Symbol, childCount uint8) Action {
	return Action{Kind: ActionReduce, Symbol: sym, ChildCount: childCount}
}

// ReduceProduction is a reduce whose children are labeled by the field map
// of productionID.
func ReduceProduction(sym Symbol, childCount uint8, productionID uint16) Action {
	return Action{Kind: ActionReduce, Symbol: sym, ChildCount: childCount, ProductionID: productionID}
}

// Accept ends a successful parse.
func Accept() Action {
	return Action{Kind: ActionAccept}
}

// Recover discards the lookahead.
func Recover() Action {
	return Action{Kind: ActionRecover}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionShift:
		if a.Repetition {
			return fmt.Sprintf("shift_repeat(%d)", a.State)
		}
		return fmt.Sprintf("shift(%d)", a.State)
	case ActionReduce:
		if a.ProductionID != 0 {
			return fmt.Sprintf("reduce(%d, %d, production=%d)", a.Symbol, a.ChildCount, a.ProductionID)
		}
		return fmt.Sprintf("reduce(%d, %d)", a.Symbol, a.ChildCount)
	default:
		return a.Kind.String()
	}
}
