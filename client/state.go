package client

// State is a connection lifecycle phase. Closed is absorbing: once reached,
// every outward call fails immediately instead of hanging.
type State int32

const (
	StateCreated State = iota
	StateInitializing
	StateOperating
	StateShuttingDown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitializing:
		return "initializing"
	case StateOperating:
		return "operating"
	case StateShuttingDown:
		return "shuttingDown"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
