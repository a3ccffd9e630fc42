package engine

import "fmt"

// State is the lifecycle state of a join.
type State int

const (
	StateIndexing State = iota
	StateScanning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIndexing:
		return "indexing"
	case StateScanning:
		return "scanning"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}
