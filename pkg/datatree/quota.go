package datatree

import (
	"strings"

	"github.com/mikekulinski/ztree/pkg/quota"
)

// quotaSubjectFromLimitsParent maps the parent path of a zookeeper_limits
// node (e.g. "/zookeeper/quota/foo") back to the quota-subject path it
// governs ("/foo"). It intentionally requires the strict "/zookeeper/quota"
// prefix, not the looser "/zookeeper" prefix -- a quota rule can only ever
// live under /zookeeper/quota, and checking the wider prefix would let an
// unrelated /zookeeper/config-ish path accidentally match.
func quotaSubjectFromLimitsParent(parentPath string) (string, bool) {
	if parentPath == quotaRoot {
		return "", false
	}
	if !strings.HasPrefix(parentPath, quotaRoot+"/") {
		return "", false
	}
	subject := strings.TrimPrefix(parentPath, quotaRoot)
	return subject, true
}

func (t *DataTree) maybeTrackQuotaNodeLocked(parentPath, childName string) {
	subject, ok := quotaSubjectFromLimitsParent(parentPath)
	if !ok {
		return
	}
	switch childName {
	case quota.LimitNode:
		t.pTrie.AddPath(subject)
	case quota.StatNode:
		t.recomputeQuotaStatsLocked(subject)
	}
}

func (t *DataTree) updateCountLocked(prefix string, delta int64) {
	t.updateStatsLocked(prefix, func(s *quota.Stats) { s.Count += delta })
}

func (t *DataTree) updateBytesLocked(prefix string, delta int64) {
	t.updateStatsLocked(prefix, func(s *quota.Stats) { s.Bytes += delta })
}

func (t *DataTree) updateStatsLocked(prefix string, mutate func(*quota.Stats)) {
	statsPath := joinChild(quotaRoot+prefix, quota.StatNode)
	statsNode, ok := t.nodes[statsPath]
	if !ok {
		return
	}
	stats, err := quota.ParseStats(statsNode.Data)
	if err != nil {
		t.log.Warnf("quota: malformed stats blob at %s: %v", statsPath, err)
		return
	}
	mutate(&stats)
	statsNode.Data = quota.FormatStats(stats)
	t.checkQuotaExceededLocked(prefix, stats)
}

func (t *DataTree) checkQuotaExceededLocked(prefix string, current quota.Stats) {
	limitsPath := joinChild(quotaRoot+prefix, quota.LimitNode)
	limitsNode, ok := t.nodes[limitsPath]
	if !ok {
		return
	}
	limit, err := quota.ParseStats(limitsNode.Data)
	if err != nil {
		return
	}
	if quota.Exceeded(limit, current) {
		t.log.Warnf("quota exceeded for %s: limit=%+v current=%+v", prefix, limit, current)
	}
}

// recomputeQuotaStatsLocked recounts subject and every descendant of it
// from scratch, counting the subject node itself inclusively to match the
// incremental path (a create/delete directly on the subject path matches
// its own trie entry). Used when a stats node first appears and again for
// every quota rule found during restore.
func (t *DataTree) recomputeQuotaStatsLocked(subject string) {
	statsPath := joinChild(quotaRoot+subject, quota.StatNode)
	statsNode, ok := t.nodes[statsPath]
	if !ok {
		return
	}
	if _, ok := t.nodes[resolvePath(subject)]; !ok {
		statsNode.Data = quota.FormatStats(quota.Stats{})
		return
	}

	var count, bytes int64
	var visit func(path string)
	visit = func(path string) {
		n, ok := t.nodes[path]
		if !ok {
			return
		}
		count++
		bytes += int64(len(n.Data))
		for _, c := range n.ChildNames() {
			visit(joinChild(path, c))
		}
	}
	visit(resolvePath(subject))

	statsNode.Data = quota.FormatStats(quota.Stats{Count: count, Bytes: bytes})
}

// setupQuotaLocked rebuilds pTrie membership and recomputes every quota
// subject's stats blob by recursively walking the whole /zookeeper/quota
// subtree and registering every zookeeper_limits leaf found at any depth,
// not just its immediate children. Called once at the end of a restore,
// after every node has been reinserted.
func (t *DataTree) setupQuotaLocked() {
	if _, ok := t.nodes[quotaRoot]; !ok {
		return
	}

	var walk func(dir string)
	walk = func(dir string) {
		node, ok := t.nodes[dir]
		if !ok {
			return
		}
		if _, ok := node.Children[quota.LimitNode]; ok {
			subject, ok := quotaSubjectFromLimitsParent(dir)
			if ok {
				t.pTrie.AddPath(subject)
				t.recomputeQuotaStatsLocked(subject)
			}
		}
		for _, child := range node.ChildNames() {
			if child == quota.LimitNode || child == quota.StatNode {
				continue
			}
			walk(joinChild(dir, child))
		}
	}
	walk(quotaRoot)
}
