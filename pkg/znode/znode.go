// Package znode defines the value types stored at each path in the data
// tree: the persisted metadata record (StatPersisted) and the in-memory
// node that bundles it with data bytes, an ACL handle, and child names.
package znode

import "github.com/mikekulinski/ztree/pkg/acl"

// StatPersisted is the metadata ZooKeeper calls a node's "stat": creation
// and modification zxids/times, the three version counters, the zxid of
// the last child-set change, and the ephemeral-owner tag.
type StatPersisted struct {
	Czxid          int64 `cbor:"czxid"`
	Mzxid          int64 `cbor:"mzxid"`
	Ctime          int64 `cbor:"ctime"`
	Mtime          int64 `cbor:"mtime"`
	Version        int32 `cbor:"version"`
	Cversion       int32 `cbor:"cversion"`
	Aversion       int32 `cbor:"aversion"`
	EphemeralOwner int64 `cbor:"ephemeralOwner"`
	Pzxid          int64 `cbor:"pzxid"`
}

// NodeRecord is a single znode. The DataTree that owns it is responsible
// for all synchronization; NodeRecord itself holds no lock.
type NodeRecord struct {
	Data     []byte
	ACL      acl.Handle
	Stat     StatPersisted
	Children map[string]struct{}
}

func New(handle acl.Handle, data []byte, stat StatPersisted) *NodeRecord {
	return &NodeRecord{
		Data:     data,
		ACL:      handle,
		Stat:     stat,
		Children: map[string]struct{}{},
	}
}

// ChildNames returns a defensive copy of the node's child name set.
func (n *NodeRecord) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for c := range n.Children {
		names = append(names, c)
	}
	return names
}
