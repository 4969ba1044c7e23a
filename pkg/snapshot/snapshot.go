// Package snapshot streams a datatree.DataTree out to and back in from a
// CBOR-encoded byte stream: the ACL table first, then a depth-first
// sequence of (path, node) records terminated by a path of "/".
package snapshot

import (
	"fmt"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/mikekulinski/ztree/pkg/acl"
	"github.com/mikekulinski/ztree/pkg/datatree"
	"github.com/mikekulinski/ztree/pkg/znode"
)

type aclRecord struct {
	// Handle of -1 is the end-of-table marker.
	Handle  int64       `cbor:"handle"`
	Entries []acl.Entry `cbor:"entries"`
}

type nodeRecord struct {
	// Path uses "" to spell the root, since "/" is reserved as the
	// end-of-stream marker and would otherwise be ambiguous with the
	// root's own real path.
	Path  string              `cbor:"path"`
	Handle int64              `cbor:"acl"`
	Data  []byte              `cbor:"data"`
	Stat  znode.StatPersisted `cbor:"stat"`
}

const endOfStreamPath = "/"

// Write serializes tree to w: the ACL table in handle order, then every
// node depth-first.
func Write(w io.Writer, tree *datatree.DataTree) error {
	enc := cbor.NewEncoder(w)

	table := tree.ACLTable()
	handles := make([]acl.Handle, 0, len(table))
	for h := range table {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		if err := enc.Encode(aclRecord{Handle: int64(h), Entries: table[h]}); err != nil {
			return fmt.Errorf("snapshot: error encoding acl table: %w", err)
		}
	}
	if err := enc.Encode(aclRecord{Handle: -1}); err != nil {
		return fmt.Errorf("snapshot: error encoding acl table terminator: %w", err)
	}

	var walkErr error
	tree.Walk(func(path string, node *znode.NodeRecord) {
		if walkErr != nil {
			return
		}
		wirePath := path
		if wirePath == "/" {
			wirePath = ""
		}
		rec := nodeRecord{Path: wirePath, Handle: int64(node.ACL), Data: node.Data, Stat: node.Stat}
		if err := enc.Encode(rec); err != nil {
			walkErr = fmt.Errorf("snapshot: error encoding node %q: %w", path, err)
		}
	})
	if walkErr != nil {
		return walkErr
	}

	if err := enc.Encode(nodeRecord{Path: endOfStreamPath}); err != nil {
		return fmt.Errorf("snapshot: error encoding terminator: %w", err)
	}
	return nil
}

// Read rebuilds tree from r. tree is reset to empty first via BeginRestore
// and finalized via FinishRestore once every record has been applied. A
// node whose ACL handle is not in the snapshot's ACL table aborts the read.
func Read(r io.Reader, tree *datatree.DataTree) error {
	dec := cbor.NewDecoder(r)

	tree.BeginRestore()

	for {
		var rec aclRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("snapshot: error decoding acl table: %w", err)
		}
		if rec.Handle == -1 {
			break
		}
		tree.RestoreACL(acl.Handle(rec.Handle), rec.Entries)
	}
	known := tree.ACLTable()

	for {
		var rec nodeRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("snapshot: error decoding node stream: %w", err)
		}
		if rec.Path == endOfStreamPath {
			break
		}
		path := rec.Path
		if path == "" {
			path = "/"
		}
		if _, ok := known[acl.Handle(rec.Handle)]; !ok {
			return fmt.Errorf("snapshot: node %q references unknown acl handle %d", path, rec.Handle)
		}
		if err := tree.RestoreNode(path, acl.Handle(rec.Handle), tree.LookupACL(acl.Handle(rec.Handle)), rec.Data, rec.Stat); err != nil {
			return fmt.Errorf("snapshot: error restoring node %q: %w", path, err)
		}
	}

	tree.FinishRestore()
	return nil
}
