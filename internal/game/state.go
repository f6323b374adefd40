// Package game provides the dungeon viewer loop and the headless navigation report.
package game

// State represents the current viewer state.
type State int

const (
	// StateExplore moves the explorer through the dungeon.
	StateExplore State = iota
	// StateInspect shows the details of the square under the explorer.
	StateInspect
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateExplore:
		return "explore"
	case StateInspect:
		return "inspect"
	default:
		return "unknown"
	}
}
