// Package acl interns access-control lists so that many znodes sharing the
// same ACL only pay for one copy of it. A handle is what a NodeRecord
// actually stores; the list behind it lives in the Cache.
package acl

import (
	"fmt"
	"sync"
)

// Entry is a single (scheme, id, permission bits) triple, e.g.
// {"world", "anyone", PermRead|PermWrite}.
type Entry struct {
	Scheme string `cbor:"scheme" json:"scheme"`
	ID     string `cbor:"id" json:"id"`
	Perms  int32  `cbor:"perms" json:"perms"`
}

const (
	PermRead   int32 = 1 << 0
	PermWrite  int32 = 1 << 1
	PermCreate int32 = 1 << 2
	PermDelete int32 = 1 << 3
	PermAdmin  int32 = 1 << 4
)

// Handle is the stable identifier a NodeRecord stores in place of a full
// ACL list.
type Handle int64

// Cache interns ACL lists and reference-counts them.
type Cache struct {
	mu       *sync.Mutex
	byHandle map[Handle][]Entry
	refcount map[Handle]int32
	next     Handle
}

func New() *Cache {
	return &Cache{
		mu:       &sync.Mutex{},
		byHandle: map[Handle][]Entry{},
		refcount: map[Handle]int32{},
	}
}

// Convert interns acl, bumping its refcount if an identical list (by
// scheme/id/perms and order) already has a handle, or minting a new one.
func (c *Cache) Convert(acl []Entry) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := keyOf(acl)
	for h, existing := range c.byHandle {
		if keyOf(existing) == key {
			c.refcount[h]++
			return h
		}
	}

	c.next++
	h := c.next
	c.byHandle[h] = append([]Entry(nil), acl...)
	c.refcount[h] = 1
	return h
}

// Lookup returns the ACL list behind h. Unknown handles return nil.
func (c *Cache) Lookup(h Handle) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byHandle[h]
}

// RemoveUsage decrements h's refcount. Entries that reach zero are kept
// around until PurgeUnused is called.
func (c *Cache) RemoveUsage(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refcount[h] > 0 {
		c.refcount[h]--
	}
}

// AddUsage registers a handle read back from a snapshot, bumping its
// refcount without requiring a list-equality search.
func (c *Cache) AddUsage(h Handle, acl []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byHandle[h]; !ok {
		c.byHandle[h] = append([]Entry(nil), acl...)
	}
	c.refcount[h]++
	if h > c.next {
		c.next = h
	}
}

// Seed registers a handle/list pair read from a snapshot's ACL table
// without touching its refcount, leaving it at zero until the nodes that
// actually reference it call AddUsage. This keeps refcount(h) equal to the
// number of nodes using h after a restore, so a handle the table carries
// but no node ends up referencing stays at zero and is dropped by
// PurgeUnused instead of being pinned at one forever.
func (c *Cache) Seed(h Handle, acl []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byHandle[h]; !ok {
		c.byHandle[h] = append([]Entry(nil), acl...)
	}
	if _, ok := c.refcount[h]; !ok {
		c.refcount[h] = 0
	}
	if h > c.next {
		c.next = h
	}
}

// PurgeUnused drops every handle whose refcount has reached zero. Called
// once at the end of a restore.
func (c *Cache) PurgeUnused() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for h, n := range c.refcount {
		if n <= 0 {
			delete(c.refcount, h)
			delete(c.byHandle, h)
		}
	}
}

// RefCount reports h's current reference count, for tests.
func (c *Cache) RefCount(h Handle) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refcount[h]
}

// Snapshot returns a copy of the full handle -> ACL table, for the
// snapshot codec to serialize.
func (c *Cache) Snapshot() map[Handle][]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Handle][]Entry, len(c.byHandle))
	for h, entries := range c.byHandle {
		out[h] = append([]Entry(nil), entries...)
	}
	return out
}

func keyOf(acl []Entry) string {
	s := ""
	for _, e := range acl {
		s += fmt.Sprintf("%s:%s:%d|", e.Scheme, e.ID, e.Perms)
	}
	return s
}
