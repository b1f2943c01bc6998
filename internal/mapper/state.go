package mapper

// State is the lifecycle phase of a Mapper
type State int32

const (
	StateCreated State = iota
	StateSubscribed
	StatePolling
	StateShuttingDown
	StateClosed
)

var stateNames = [...]string{
	StateCreated:      "created",
	StateSubscribed:   "subscribed",
	StatePolling:      "polling",
	StateShuttingDown: "shutting_down",
	StateClosed:       "closed",
}

// allStates lists every state name, in lifecycle order
var allStates = stateNames[:]

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
