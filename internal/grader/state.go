package grader

// State is a step of the grading state machine.
type State int

const (
	StateInit State = iota
	StateResolvingInputs
	StateRunningSetup
	StateRunningTest
	StateComparing
	StateBuildingResult
	StateDone
	StateError
)

var stateNames = [...]string{
	StateInit:            "init",
	StateResolvingInputs: "resolving-inputs",
	StateRunningSetup:    "running-setup",
	StateRunningTest:     "running-test",
	StateComparing:       "comparing",
	StateBuildingResult:  "building-result",
	StateDone:            "done",
	StateError:           "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
