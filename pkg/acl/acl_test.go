package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ConvertInterning(t *testing.T) {
	c := New()
	list := []Entry{{Scheme: "world", ID: "anyone", Perms: PermRead}}

	h1 := c.Convert(list)
	h2 := c.Convert(append([]Entry(nil), list...))

	assert.Equal(t, h1, h2)
	assert.EqualValues(t, 2, c.RefCount(h1))
}

func TestCache_ConvertDistinctLists(t *testing.T) {
	c := New()
	h1 := c.Convert([]Entry{{Scheme: "world", ID: "anyone", Perms: PermRead}})
	h2 := c.Convert([]Entry{{Scheme: "ip", ID: "10.0.0.1", Perms: PermRead | PermWrite}})
	assert.NotEqual(t, h1, h2)
}

func TestCache_RemoveUsageAndPurge(t *testing.T) {
	c := New()
	list := []Entry{{Scheme: "world", ID: "anyone", Perms: PermRead}}
	h := c.Convert(list)

	c.RemoveUsage(h)
	require.EqualValues(t, 0, c.RefCount(h))

	c.PurgeUnused()
	assert.Nil(t, c.Lookup(h))
}

func TestCache_AddUsageFromSnapshot(t *testing.T) {
	c := New()
	list := []Entry{{Scheme: "world", ID: "anyone", Perms: PermRead}}
	c.AddUsage(Handle(5), list)

	assert.Equal(t, list, c.Lookup(Handle(5)))
	assert.EqualValues(t, 1, c.RefCount(Handle(5)))

	// A handle minted after a restored high-water handle must not collide.
	h := c.Convert([]Entry{{Scheme: "ip", ID: "x", Perms: PermRead}})
	assert.Greater(t, int64(h), int64(5))
}

func TestCache_SeedLeavesRefCountAtZero(t *testing.T) {
	c := New()
	list := []Entry{{Scheme: "world", ID: "anyone", Perms: PermRead}}
	c.Seed(Handle(5), list)

	assert.Equal(t, list, c.Lookup(Handle(5)))
	assert.EqualValues(t, 0, c.RefCount(Handle(5)))

	// A handle seeded from the snapshot's table but referenced by no
	// restored node stays at zero and is dropped, the documented purpose
	// of PurgeUnused at the end of a restore.
	c.PurgeUnused()
	assert.Nil(t, c.Lookup(Handle(5)))

	// A handle minted after a restored high-water handle must not collide.
	c.Seed(Handle(7), list)
	h := c.Convert([]Entry{{Scheme: "ip", ID: "x", Perms: PermRead}})
	assert.Greater(t, int64(h), int64(7))
}

func TestCache_SeedThenAddUsageCountsOnlyReferences(t *testing.T) {
	c := New()
	list := []Entry{{Scheme: "world", ID: "anyone", Perms: PermRead}}

	// Mirrors a restore: the snapshot's ACL table seeds the handle once,
	// then every node that actually references it calls AddUsage.
	c.Seed(Handle(5), list)
	c.AddUsage(Handle(5), list)
	c.AddUsage(Handle(5), list)

	assert.EqualValues(t, 2, c.RefCount(Handle(5)))
}

func TestCache_Snapshot(t *testing.T) {
	c := New()
	h := c.Convert([]Entry{{Scheme: "world", ID: "anyone", Perms: PermRead}})

	table := c.Snapshot()
	require.Contains(t, table, h)
	assert.Equal(t, []Entry{{Scheme: "world", ID: "anyone", Perms: PermRead}}, table[h])
}
