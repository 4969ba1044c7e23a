// Package watch implements the one-shot path-watch bookkeeping used by the
// data tree: a watcher registers interest in a path once, and the first
// matching event removes it from the table before invoking it.
package watch

import "sync"

// EventType enumerates the kinds of change a watch can fire for.
type EventType int

const (
	NodeCreated EventType = iota
	NodeDeleted
	NodeDataChanged
	NodeChildrenChanged
)

func (e EventType) String() string {
	switch e {
	case NodeCreated:
		return "NodeCreated"
	case NodeDeleted:
		return "NodeDeleted"
	case NodeDataChanged:
		return "NodeDataChanged"
	case NodeChildrenChanged:
		return "NodeChildrenChanged"
	default:
		return "Unknown"
	}
}

// Event is delivered to a Watcher exactly once.
type Event struct {
	Type EventType
	Path string
}

// Watcher is implemented by whatever owns the client-facing side of a
// watch registration (typically a session).
type Watcher interface {
	Process(event Event)
}

// Manager maps a path to the set of watchers currently interested in it.
// A data-watch manager and a child-watch manager are separate instances.
type Manager struct {
	mu    sync.Mutex
	table map[string]map[Watcher]struct{}
}

func NewManager() *Manager {
	return &Manager{table: map[string]map[Watcher]struct{}{}}
}

// AddWatch registers w on path. Idempotent.
func (m *Manager) AddWatch(path string, w Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.table[path]
	if !ok {
		set = map[Watcher]struct{}{}
		m.table[path] = set
	}
	set[w] = struct{}{}
}

// ContainsWatcher reports whether w is registered on path.
func (m *Manager) ContainsWatcher(path string, w Watcher) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.table[path][w]
	return ok
}

// RemoveWatcher drops w from every path it was registered on, e.g. when
// its owning connection disappears.
func (m *Manager) RemoveWatcher(w Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, set := range m.table {
		delete(set, w)
		if len(set) == 0 {
			delete(m.table, path)
		}
	}
}

// TriggerWatch fires and clears every watcher registered on path.
func (m *Manager) TriggerWatch(path string, t EventType) map[Watcher]struct{} {
	return m.TriggerWatchSuppress(path, t, nil)
}

// TriggerWatchSuppress clears every watcher on path and fires all of them
// except those present in suppress, so a data-watch and a child-watch
// manager watching the same path don't double-fire a watcher registered on
// both. Suppressed watchers are removed from path without being invoked.
func (m *Manager) TriggerWatchSuppress(path string, t EventType, suppress map[Watcher]struct{}) map[Watcher]struct{} {
	m.mu.Lock()
	set, ok := m.table[path]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.table, path)
	m.mu.Unlock()

	fired := make(map[Watcher]struct{}, len(set))
	event := Event{Type: t, Path: path}
	for w := range set {
		if _, skip := suppress[w]; skip {
			continue
		}
		w.Process(event)
		fired[w] = struct{}{}
	}
	return fired
}

// WatchCount returns the total number of (path, watcher) registrations.
func (m *Manager) WatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, set := range m.table {
		n += len(set)
	}
	return n
}

// Dump returns a snapshot of the watch table for diagnostics, keyed by
// path, values as opaque watcher counts rather than the watchers
// themselves since Watcher carries no printable identity here.
func (m *Manager) Dump() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.table))
	for path, set := range m.table {
		out[path] = len(set)
	}
	return out
}
