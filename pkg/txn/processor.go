package txn

import (
	"sync/atomic"

	"github.com/mikekulinski/ztree/pkg/datatree"
	"github.com/mikekulinski/ztree/pkg/zkerrors"
)

// Processor interprets (Header, Body) pairs against a DataTree in zxid
// order. It is meant to be driven by a single replay goroutine; reads
// against the underlying tree may run concurrently with it.
type Processor struct {
	tree     *datatree.DataTree
	lastZxid atomic.Int64
}

func NewProcessor(tree *datatree.DataTree) *Processor {
	return &Processor{tree: tree}
}

// LastProcessedZxid reports the highest zxid whose effect is guaranteed
// visible in the tree. It only advances after a transaction's mutation has
// been applied, never before.
func (p *Processor) LastProcessedZxid() int64 {
	return p.lastZxid.Load()
}

// ProcessTxn applies one transaction and returns its result. zxid ordering
// is the caller's responsibility; ProcessTxn does not reject an
// out-of-order zxid, it only ever advances LastProcessedZxid monotonically.
func (p *Processor) ProcessTxn(h Header, b Body) Result {
	rc := Result{ClientID: h.ClientID, Cxid: h.Cxid, Zxid: h.Zxid, Type: h.Type}
	p.apply(h, b, &rc)

	if h.Zxid > p.lastZxid.Load() {
		p.lastZxid.Store(h.Zxid)
	}
	return rc
}

func (p *Processor) apply(h Header, b Body, rc *Result) {
	switch h.Type {
	case OpCreate, OpCreate2, OpCreateTTL, OpCreateContainer:
		p.applyCreate(h, b.Create, rc)
	case OpDelete, OpDeleteContainer:
		rc.Path = b.Delete.Path
		if err := p.tree.DeleteNode(b.Delete.Path, h.Zxid); err != nil {
			rc.Err = int32(zkerrors.CodeOf(err))
		}
	case OpSetData, OpReconfig:
		rc.Path = b.SetData.Path
		stat, err := p.tree.SetData(b.SetData.Path, b.SetData.Data, b.SetData.Version, h.Zxid, h.Time)
		if err != nil {
			rc.Err = int32(zkerrors.CodeOf(err))
			return
		}
		rc.Stat = &stat
	case OpSetACL:
		rc.Path = b.SetACL.Path
		stat, err := p.tree.SetACL(b.SetACL.Path, b.SetACL.ACL, b.SetACL.Version)
		if err != nil {
			rc.Err = int32(zkerrors.CodeOf(err))
			return
		}
		rc.Stat = &stat
	case OpCloseSession:
		_ = p.tree.KillSession(h.ClientID, h.Zxid)
	case OpError:
		rc.Err = b.Error.Err
	case OpCheck:
		rc.Path = b.Check.Path
	case OpMulti:
		rc.MultiResults = p.processMulti(h, b.Multi)
		for _, sub := range rc.MultiResults {
			if sub.Err != int32(zkerrors.OK) {
				rc.Err = sub.Err
				break
			}
		}
	}
}

func (p *Processor) applyCreate(h Header, c *CreateTxn, rc *Result) {
	rc.Path = c.Path
	stat, err := p.tree.CreateNode(c.Path, c.Data, c.ACL, c.EphemeralOwner, c.ParentCVersion, h.Zxid, h.Time)
	if err != nil {
		rc.Err = int32(zkerrors.CodeOf(err))
		if zkerrors.CodeOf(err) == zkerrors.NodeExists {
			// Restore-time repair: a lazily-taken snapshot can capture a
			// parent before one of its children, so replaying the log
			// over that snapshot re-creates a child that already exists.
			// The mutation itself is a no-op; only the parent's
			// bookkeeping needs to catch up.
			if parentPath, _, splitErr := datatree.SplitPath(c.Path); splitErr == nil {
				_ = p.tree.SetCversionPzxid(parentPath, c.ParentCVersion, h.Zxid)
			}
		}
		return
	}
	rc.Stat = &stat
}

// processMulti pre-scans ops for an error marker. If none is found every
// op applies normally, dispatched on its own MultiOp.Type rather than the
// outer header's Type (which is just OpMulti). If one is found, every op
// (including the ones before the marker) is rewritten to an error result
// instead of being applied: OK for ops before the marker, the marker's
// own code at the marker, and RuntimeInconsistency after it.
func (p *Processor) processMulti(h Header, m *MultiTxn) []Result {
	results := make([]Result, len(m.Ops))

	errIdx := -1
	for i, op := range m.Ops {
		if op.Body.Error != nil {
			errIdx = i
			break
		}
	}

	if errIdx == -1 {
		for i, op := range m.Ops {
			sub := Result{ClientID: h.ClientID, Cxid: h.Cxid, Zxid: h.Zxid, Type: op.Type}
			subHeader := h
			subHeader.Type = op.Type
			p.apply(subHeader, op.Body, &sub)
			results[i] = sub
		}
		return results
	}

	for i, op := range m.Ops {
		var code int32
		switch {
		case i < errIdx:
			code = int32(zkerrors.OK)
		case i == errIdx:
			code = op.Body.Error.Err
		default:
			code = int32(zkerrors.RuntimeInconsistency)
		}
		results[i] = Result{ClientID: h.ClientID, Cxid: h.Cxid, Zxid: h.Zxid, Type: op.Type, Err: code}
	}
	return results
}
