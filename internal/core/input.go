package core

// Action represents a semantic game action, abstracted from physical key presses.
// Interpreters react to intents rather than raw keys.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow
	ActionDown           // S, Down arrow
	ActionLeft           // A, Left arrow
	ActionRight          // D, Right arrow
	ActionFire           // Space - bomb, hard drop
	ActionCheck          // Enter - sudoku check
	ActionClear          // Backspace, Delete, 0 - sudoku clear
	ActionRestart        // R key - restart after game over
	ActionQuit           // Q, Ctrl+C
	ActionPause          // P
	ActionDigit1         // 1..9 follow in order
	ActionDigit2
	ActionDigit3
	ActionDigit4
	ActionDigit5
	ActionDigit6
	ActionDigit7
	ActionDigit8
	ActionDigit9
)

// DigitAction returns the action for digit n (1-9), or ActionNone.
func DigitAction(n int) Action {
	if n < 1 || n > 9 {
		return ActionNone
	}
	return ActionDigit1 + Action(n-1)
}

// Digit returns the digit carried by a digit action, or 0.
func (a Action) Digit() int {
	if a < ActionDigit1 || a > ActionDigit9 {
		return 0
	}
	return int(a-ActionDigit1) + 1
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if d := a.Digit(); d > 0 {
		return "Digit" + string(rune('0'+d))
	}
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionFire:
		return "Fire"
	case ActionCheck:
		return "Check"
	case ActionClear:
		return "Clear"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	case ActionPause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// InputFrame is the set of actions active during one simulation tick.
// Terminals deliver key presses rather than key state, so the platform keeps
// held directions alive for a short window (see platform/tui).
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// InputOf builds a frame with the given actions set. Mostly for tests.
func InputOf(actions ...Action) InputFrame {
	f := NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	return f
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Digit returns the first digit action present in the frame, or 0.
func (f InputFrame) Digit() int {
	for n := 1; n <= 9; n++ {
		if f.Has(DigitAction(n)) {
			return n
		}
	}
	return 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}
