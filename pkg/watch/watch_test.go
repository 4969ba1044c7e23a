package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWatcher struct {
	events []Event
}

func (r *recordingWatcher) Process(e Event) {
	r.events = append(r.events, e)
}

func TestManager_TriggerWatchIsOneShot(t *testing.T) {
	m := NewManager()
	w := &recordingWatcher{}
	m.AddWatch("/a", w)

	fired := m.TriggerWatch("/a", NodeDataChanged)
	require.Len(t, fired, 1)
	require.Len(t, w.events, 1)
	assert.Equal(t, NodeDataChanged, w.events[0].Type)

	// Second trigger on the same path fires nothing: the watch was consumed.
	fired = m.TriggerWatch("/a", NodeDataChanged)
	assert.Empty(t, fired)
	assert.Len(t, w.events, 1)
}

func TestManager_ContainsWatcher(t *testing.T) {
	m := NewManager()
	w := &recordingWatcher{}
	assert.False(t, m.ContainsWatcher("/a", w))
	m.AddWatch("/a", w)
	assert.True(t, m.ContainsWatcher("/a", w))
}

func TestManager_RemoveWatcher(t *testing.T) {
	m := NewManager()
	w := &recordingWatcher{}
	m.AddWatch("/a", w)
	m.AddWatch("/b", w)

	m.RemoveWatcher(w)

	assert.False(t, m.ContainsWatcher("/a", w))
	assert.False(t, m.ContainsWatcher("/b", w))
}

func TestManager_TriggerWatchSuppress(t *testing.T) {
	m := NewManager()
	w1 := &recordingWatcher{}
	w2 := &recordingWatcher{}
	m.AddWatch("/a", w1)
	m.AddWatch("/a", w2)

	suppress := map[Watcher]struct{}{w1: {}}
	m.TriggerWatchSuppress("/a", NodeDeleted, suppress)

	assert.Empty(t, w1.events)
	assert.Len(t, w2.events, 1)
}

func TestManager_WatchCount(t *testing.T) {
	m := NewManager()
	m.AddWatch("/a", &recordingWatcher{})
	m.AddWatch("/b", &recordingWatcher{})
	assert.Equal(t, 2, m.WatchCount())
}
