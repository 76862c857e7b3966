// ABOUTME: Load status of a cache controller
// ABOUTME: Idle, Loading, Ready, and Failed are mutually exclusive
package cache

type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is a consistent copy of a controller's state.
type Snapshot[T any] struct {
	Items  []T
	Status Status
	Err    error
}
