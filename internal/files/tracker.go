package files

import (
	"sort"

	pkgSync "github.com/hbomb79/Riptide/pkg/sync"
)

// Tracker records the filenames produced during the current process
// lifetime which have not yet been deleted. It is the source of truth for
// bulk session cleanup.
type Tracker struct {
	names pkgSync.TypedSyncMap[string, struct{}]
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Track inserts the given filename into the set. Tracking an already
// tracked filename is a no-op.
func (tracker *Tracker) Track(filename string) {
	tracker.names.Store(filename, struct{}{})
}

// Untrack removes the given filename from the set, if present.
func (tracker *Tracker) Untrack(filename string) {
	tracker.names.Delete(filename)
}

// Contains reports whether the given filename is currently tracked.
func (tracker *Tracker) Contains(filename string) bool {
	_, ok := tracker.names.Load(filename)
	return ok
}

// List returns the tracked filenames in a stable order.
func (tracker *Tracker) List() []string {
	names := make([]string, 0)
	tracker.names.Range(func(name string, _ struct{}) bool {
		names = append(names, name)
		return true
	})

	sort.Strings(names)
	return names
}
