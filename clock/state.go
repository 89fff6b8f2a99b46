package clock

import "fmt"

// State is the state of a pin clock.
type State uint8

// The states of a pin clock. A Disabled clock has no config.
const (
	Disabled State = iota
	Stopped
	Running
	Paused
)

var stateNames = map[State]string{
	Disabled: "Disabled",
	Stopped:  "Stopped",
	Running:  "Running",
	Paused:   "Paused",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("State(%d)", s)
}

// Op names a clock operation.
type Op string

// The clock operations.
const (
	OpEnable  Op = "enable_clock"
	OpDisable Op = "disable_clock"
	OpStart   Op = "start_clock"
	OpPause   Op = "pause_clock"
	OpResume  Op = "resume_clock"
	OpStop    Op = "stop_clock"
	OpUpdate  Op = "update_clock"
)

// validFrom lists the states each operation may be applied in. Disable is
// valid in every state and is not listed.
var validFrom = map[Op][]State{
	OpEnable: {Disabled, Stopped},
	OpStart:  {Stopped},
	OpPause:  {Running},
	OpResume: {Paused},
	OpStop:   {Running, Paused},
	OpUpdate: {Stopped, Running, Paused},
}

// CanApply tells if op is permitted in state s.
func CanApply(op Op, s State) bool {
	if op == OpDisable {
		return true
	}

	for _, allowed := range validFrom[op] {
		if allowed == s {
			return true
		}
	}

	return false
}
