// Package datatree is the core aggregate: the hierarchical store of
// znodes, the hash index over their paths, the ephemeral/container/TTL
// ownership indexes, and the links into the ACL cache, quota trie, and
// watch managers that every mutation has to keep in step.
package datatree

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mikekulinski/ztree/pkg/acl"
	"github.com/mikekulinski/ztree/pkg/ephemeral"
	"github.com/mikekulinski/ztree/pkg/quota"
	"github.com/mikekulinski/ztree/pkg/trie"
	"github.com/mikekulinski/ztree/pkg/watch"
	"github.com/mikekulinski/ztree/pkg/zkerrors"
	"github.com/mikekulinski/ztree/pkg/znode"
)

const (
	quotaRoot  = "/zookeeper/quota"
	configPath = "/zookeeper/config"
)

// ReadACLUnsafe is the default ACL given to reserved management nodes:
// world-readable, nothing else.
var ReadACLUnsafe = []acl.Entry{{Scheme: "world", ID: "anyone", Perms: acl.PermRead}}

// OpenACLUnsafe grants every permission to anyone; used for plain user
// paths created without an explicit ACL.
var OpenACLUnsafe = []acl.Entry{{Scheme: "world", ID: "anyone", Perms: acl.PermRead | acl.PermWrite | acl.PermCreate | acl.PermDelete | acl.PermAdmin}}

// DataTree is the in-memory hierarchical store. All of its exported
// methods are safe for concurrent use; a single tree-wide RWMutex is the
// lock granule, mirroring the coarse single-lock style the rest of this
// codebase uses for its shared maps.
type DataTree struct {
	mu *sync.RWMutex

	nodes      map[string]*znode.NodeRecord
	ephemerals map[int64]map[string]struct{}
	containers map[string]struct{}
	ttls       map[string]struct{}

	pTrie *trie.PathTrie
	acl   *acl.Cache

	dataWatches  *watch.Manager
	childWatches *watch.Manager

	log *logrus.Entry
}

func New(log *logrus.Entry) *DataTree {
	t := &DataTree{
		mu:           &sync.RWMutex{},
		nodes:        map[string]*znode.NodeRecord{},
		ephemerals:   map[int64]map[string]struct{}{},
		containers:   map[string]struct{}{},
		ttls:         map[string]struct{}{},
		pTrie:        trie.New(),
		acl:          acl.New(),
		dataWatches:  watch.NewManager(),
		childWatches: watch.NewManager(),
		log:          log,
	}
	t.nodes["/"] = znode.New(t.acl.Convert(nil), nil, znode.StatPersisted{})
	t.createReservedPathLocked("/zookeeper", nil)
	t.createReservedPathLocked(quotaRoot, nil)
	t.createReservedPathLocked(configPath, ReadACLUnsafe)
	return t
}

// createReservedPathLocked is only used at construction time, before the
// tree is shared, so it takes no lock; unlike CreateNode it leaves the
// parent's cversion and pzxid at zero and fires no watches.
func (t *DataTree) createReservedPathLocked(path string, aclList []acl.Entry) {
	parent, child, err := SplitPath(path)
	if err != nil {
		panic(err)
	}
	parentNode := t.nodes[parent]
	handle := t.acl.Convert(aclList)
	t.nodes[path] = znode.New(handle, nil, znode.StatPersisted{})
	parentNode.Children[child] = struct{}{}
}

// --- mutation primitives -------------------------------------------------

// CreateNode creates a new znode at path. parentCVersion of -1 means
// "derive the next cversion from the parent's current one"; any other
// value is used verbatim (the authoritative value assigned up the stack
// for replicated ordering, or supplied during restore-time repair).
func (t *DataTree) CreateNode(path string, data []byte, aclList []acl.Entry, ephemeralOwner int64, parentCVersion int32, zxid int64, timeMs int64) (znode.StatPersisted, error) {
	path = resolvePath(path)
	parentPath, childName, err := SplitPath(path)
	if err != nil {
		return znode.StatPersisted{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	parent, ok := t.nodes[parentPath]
	if !ok {
		return znode.StatPersisted{}, zkerrors.New(zkerrors.NoNode, path)
	}
	if _, exists := parent.Children[childName]; exists {
		return znode.StatPersisted{}, zkerrors.New(zkerrors.NodeExists, path)
	}

	handle := t.acl.Convert(aclList)
	stat := znode.StatPersisted{
		Czxid:          zxid,
		Mzxid:          zxid,
		Pzxid:          zxid,
		Ctime:          timeMs,
		Mtime:          timeMs,
		EphemeralOwner: ephemeralOwner,
	}
	node := znode.New(handle, data, stat)
	t.nodes[path] = node

	newCversion := parentCVersion
	if newCversion == -1 {
		newCversion = parent.Stat.Cversion + 1
	}
	parent.Stat.Cversion = newCversion
	parent.Stat.Pzxid = zxid
	parent.Children[childName] = struct{}{}

	t.indexEphemeralTypeLocked(path, ephemeralOwner)
	t.maybeTrackQuotaNodeLocked(parentPath, childName)

	if prefix := t.pTrie.FindMaxPrefix(path); prefix != "" {
		t.updateCountLocked(prefix, 1)
		t.updateBytesLocked(prefix, int64(len(data)))
	}

	t.dataWatches.TriggerWatch(path, watch.NodeCreated)
	t.childWatches.TriggerWatch(parentPath, watch.NodeChildrenChanged)

	return node.Stat, nil
}

// DeleteNode removes path. Deliberately does not bump the parent's
// cversion -- only pzxid moves. Fires NodeDeleted on the path itself and
// NodeChildrenChanged on the parent.
func (t *DataTree) DeleteNode(path string, zxid int64) error {
	path = resolvePath(path)
	parentPath, childName, err := SplitPath(path)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if !ok {
		return zkerrors.New(zkerrors.NoNode, path)
	}

	parent := t.nodes[parentPath]
	delete(parent.Children, childName)
	parent.Stat.Pzxid = zxid

	delete(t.nodes, path)
	t.acl.RemoveUsage(node.ACL)
	t.unindexEphemeralTypeLocked(path, node.Stat.EphemeralOwner)

	if childName == quota.LimitNode {
		if subject, ok := quotaSubjectFromLimitsParent(parentPath); ok {
			t.pTrie.DeletePath(subject)
		}
	}
	if prefix := t.pTrie.FindMaxPrefix(path); prefix != "" {
		t.updateCountLocked(prefix, -1)
		t.updateBytesLocked(prefix, -int64(len(node.Data)))
	}

	fired := t.dataWatches.TriggerWatch(path, watch.NodeDeleted)
	t.childWatches.TriggerWatchSuppress(path, watch.NodeDeleted, fired)
	t.childWatches.TriggerWatch(parentPath, watch.NodeChildrenChanged)

	return nil
}

// SetData replaces a node's data bytes and bumps its data version.
func (t *DataTree) SetData(path string, data []byte, version int32, zxid int64, timeMs int64) (znode.StatPersisted, error) {
	path = resolvePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if !ok {
		return znode.StatPersisted{}, zkerrors.New(zkerrors.NoNode, path)
	}

	lastLen := len(node.Data)
	node.Data = data
	node.Stat.Mtime = timeMs
	node.Stat.Mzxid = zxid
	node.Stat.Version = version

	if prefix := t.pTrie.FindMaxPrefix(path); prefix != "" {
		t.updateBytesLocked(prefix, int64(len(data)-lastLen))
	}

	t.dataWatches.TriggerWatch(path, watch.NodeDataChanged)
	return node.Stat, nil
}

// SetACL replaces a node's ACL. Deliberately does not fire a watch.
func (t *DataTree) SetACL(path string, aclList []acl.Entry, version int32) (znode.StatPersisted, error) {
	path = resolvePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if !ok {
		return znode.StatPersisted{}, zkerrors.New(zkerrors.NoNode, path)
	}
	t.acl.RemoveUsage(node.ACL)
	node.ACL = t.acl.Convert(aclList)
	node.Stat.Aversion = version
	return node.Stat, nil
}

// KillSession deletes every ephemeral node owned by sessionID. A node
// already gone (NoNode) is not an error; anything else is logged and
// skipped so one bad ephemeral doesn't block cleanup of the rest.
func (t *DataTree) KillSession(sessionID int64, zxid int64) error {
	t.mu.Lock()
	owned := t.ephemerals[sessionID]
	paths := make([]string, 0, len(owned))
	for p := range owned {
		paths = append(paths, p)
	}
	delete(t.ephemerals, sessionID)
	t.mu.Unlock()

	for _, p := range paths {
		if err := t.DeleteNode(p, zxid); err != nil {
			if zkerrors.CodeOf(err) == zkerrors.NoNode {
				continue
			}
			t.log.Warnf("killSession: error deleting ephemeral %s: %v", p, err)
		}
	}
	return nil
}

// SetCversionPzxid advances a parent's cversion/pzxid during restore-time
// repair, when a create replayed from the log hits a child the snapshot
// already captured. It only ever moves cversion forward.
func (t *DataTree) SetCversionPzxid(path string, newCversion int32, zxid int64) error {
	path = resolvePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if !ok {
		return zkerrors.New(zkerrors.NoNode, path)
	}
	if newCversion == -1 {
		newCversion = node.Stat.Cversion + 1
	}
	if newCversion > node.Stat.Cversion {
		node.Stat.Cversion = newCversion
		node.Stat.Pzxid = zxid
	}
	return nil
}

// CandidateReapablePaths returns containers that are presently childless
// after having had at least one child (cversion > 0) and TTL nodes that
// are both childless and idle past their encoded TTL relative to
// nowMillis. It never deletes anything itself.
func (t *DataTree) CandidateReapablePaths(nowMillis int64) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	for p := range t.containers {
		if n, ok := t.nodes[p]; ok && len(n.Children) == 0 && n.Stat.Cversion > 0 {
			out = append(out, p)
		}
	}
	for p := range t.ttls {
		n, ok := t.nodes[p]
		if !ok || len(n.Children) != 0 {
			continue
		}
		_, ttlMillis := ephemeral.Decode(n.Stat.EphemeralOwner)
		if nowMillis-n.Stat.Mtime >= ttlMillis {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// --- queries --------------------------------------------------------------

func (t *DataTree) GetData(path string, w watch.Watcher) ([]byte, znode.StatPersisted, error) {
	path = resolvePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if !ok {
		return nil, znode.StatPersisted{}, zkerrors.New(zkerrors.NoNode, path)
	}
	if w != nil {
		t.dataWatches.AddWatch(path, w)
	}
	data := make([]byte, len(node.Data))
	copy(data, node.Data)
	return data, node.Stat, nil
}

func (t *DataTree) GetChildren(path string, w watch.Watcher) ([]string, znode.StatPersisted, error) {
	path = resolvePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if !ok {
		return nil, znode.StatPersisted{}, zkerrors.New(zkerrors.NoNode, path)
	}
	if w != nil {
		t.childWatches.AddWatch(path, w)
	}
	return node.ChildNames(), node.Stat, nil
}

// Exists registers a data watch even when the node is absent, so it fires
// on a future NodeCreated.
func (t *DataTree) Exists(path string, w watch.Watcher) (*znode.StatPersisted, error) {
	path = resolvePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[path]
	if w != nil {
		t.dataWatches.AddWatch(path, w)
	}
	if !ok {
		return nil, zkerrors.New(zkerrors.NoNode, path)
	}
	st := node.Stat
	return &st, nil
}

func (t *DataTree) GetACL(path string) ([]acl.Entry, znode.StatPersisted, error) {
	path = resolvePath(path)

	t.mu.RLock()
	defer t.mu.RUnlock()

	node, ok := t.nodes[path]
	if !ok {
		return nil, znode.StatPersisted{}, zkerrors.New(zkerrors.NoNode, path)
	}
	return t.acl.Lookup(node.ACL), node.Stat, nil
}

func (t *DataTree) GetEphemerals(sessionID int64) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set := t.ephemerals[sessionID]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// DumpEphemerals is a diagnostic report of every session's ephemeral
// ownership, keyed by session id.
func (t *DataTree) DumpEphemerals() map[int64][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[int64][]string, len(t.ephemerals))
	for sid, set := range t.ephemerals {
		paths := make([]string, 0, len(set))
		for p := range set {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out[sid] = paths
	}
	return out
}

// WatchSummary reports how many (path, watcher) registrations are
// currently outstanding on each watch manager.
func (t *DataTree) WatchSummary() (dataWatches, childWatches int) {
	return t.dataWatches.WatchCount(), t.childWatches.WatchCount()
}

func (t *DataTree) RemoveCnxn(w watch.Watcher) {
	t.dataWatches.RemoveWatcher(w)
	t.childWatches.RemoveWatcher(w)
}

// Walk visits every node depth-first from the root, in a deterministic
// child order, the layout the snapshot codec relies on.
func (t *DataTree) Walk(fn func(path string, node *znode.NodeRecord)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var visit func(path string)
	visit = func(path string) {
		node := t.nodes[path]
		fn(path, node)
		names := node.ChildNames()
		sort.Strings(names)
		for _, c := range names {
			visit(joinChild(path, c))
		}
	}
	visit("/")
}

// NodeCount reports the total number of znodes in the tree, including the
// reserved management nodes.
func (t *DataTree) NodeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// ApproximateDataSize sums the length of every node's data bytes plus the
// length of its path, a cheap substitute for exact memory accounting; ACL
// and stat overhead are not counted.
func (t *DataTree) ApproximateDataSize() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var total int64
	for path, node := range t.nodes {
		total += int64(len(path)) + int64(len(node.Data))
	}
	return total
}
