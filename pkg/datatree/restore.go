package datatree

import (
	"github.com/mikekulinski/ztree/pkg/acl"
	"github.com/mikekulinski/ztree/pkg/ephemeral"
	"github.com/mikekulinski/ztree/pkg/trie"
	"github.com/mikekulinski/ztree/pkg/zkerrors"
	"github.com/mikekulinski/ztree/pkg/znode"
)

func (t *DataTree) indexEphemeralTypeLocked(path string, owner int64) {
	switch typ, _ := ephemeral.Decode(owner); typ {
	case ephemeral.Normal:
		set := t.ephemerals[owner]
		if set == nil {
			set = map[string]struct{}{}
			t.ephemerals[owner] = set
		}
		set[path] = struct{}{}
	case ephemeral.Container:
		t.containers[path] = struct{}{}
	case ephemeral.TTL:
		t.ttls[path] = struct{}{}
	}
}

func (t *DataTree) unindexEphemeralTypeLocked(path string, owner int64) {
	switch typ, _ := ephemeral.Decode(owner); typ {
	case ephemeral.Normal:
		if set, ok := t.ephemerals[owner]; ok {
			delete(set, path)
			if len(set) == 0 {
				delete(t.ephemerals, owner)
			}
		}
	case ephemeral.Container:
		delete(t.containers, path)
	case ephemeral.TTL:
		delete(t.ttls, path)
	}
}

// BeginRestore discards the current tree contents in preparation for a
// snapshot load. Every node, including the root and the reserved
// management nodes, is dropped along with the ACL cache and the indexes;
// they come back only from the snapshot's own records via RestoreNode.
func (t *DataTree) BeginRestore() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nodes = map[string]*znode.NodeRecord{}
	t.ephemerals = map[int64]map[string]struct{}{}
	t.containers = map[string]struct{}{}
	t.ttls = map[string]struct{}{}
	t.pTrie = trie.New()
	t.acl = acl.New()
}

// RestoreNode reinserts a single (path, node) record read back from a
// snapshot. Records must arrive in depth-first order so each node's
// parent already exists.
func (t *DataTree) RestoreNode(path string, handle acl.Handle, aclEntries []acl.Entry, data []byte, stat znode.StatPersisted) error {
	path = resolvePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	node := znode.New(handle, data, stat)
	t.nodes[path] = node
	t.acl.AddUsage(handle, aclEntries)

	if path != "/" {
		parentPath, childName, err := SplitPath(path)
		if err != nil {
			return err
		}
		parent, ok := t.nodes[parentPath]
		if !ok {
			return zkerrors.New(zkerrors.NoNode, parentPath)
		}
		parent.Children[childName] = struct{}{}
	}

	t.indexEphemeralTypeLocked(path, stat.EphemeralOwner)
	return nil
}

// FinishRestore re-derives the quota trie and quota-stat blobs from the
// freshly loaded tree, then drops any ACL handle that ended up with no
// referencing node.
func (t *DataTree) FinishRestore() {
	t.mu.Lock()
	t.setupQuotaLocked()
	t.mu.Unlock()
	t.acl.PurgeUnused()
}

// RestoreACL registers an ACL handle/list pair read from the leading ACL
// table of a snapshot, ahead of any RestoreNode calls that reference it.
// It only seeds the list, leaving the refcount at zero -- the subsequent
// RestoreNode call for each node referencing handle is what counts it, the
// same way Convert/AddUsage do outside of a restore. Seeding the refcount
// itself here would double-count every reference and leave handles with no
// referencing node pinned above zero, defeating FinishRestore's PurgeUnused.
func (t *DataTree) RestoreACL(handle acl.Handle, entries []acl.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.acl.Seed(handle, entries)
}

// LookupACL returns the ACL list behind handle, for the snapshot codec.
func (t *DataTree) LookupACL(handle acl.Handle) []acl.Entry {
	return t.acl.Lookup(handle)
}

// ACLTable returns a copy of the full handle -> ACL table, for the
// snapshot codec to write out.
func (t *DataTree) ACLTable() map[acl.Handle][]acl.Entry {
	return t.acl.Snapshot()
}

// ACLRefCount reports handle's current reference count, for tests
// asserting refcount(h) == |{n : n.aclHandle = h}|.
func (t *DataTree) ACLRefCount(handle acl.Handle) int32 {
	return t.acl.RefCount(handle)
}
