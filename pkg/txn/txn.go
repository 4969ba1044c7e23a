// Package txn defines the transaction wire shapes the data tree is driven
// by (a header plus one of a closed set of body variants) and the
// processor that interprets them against a datatree.DataTree.
package txn

import (
	"github.com/mikekulinski/ztree/pkg/acl"
	"github.com/mikekulinski/ztree/pkg/znode"
)

// OpCode identifies which field of a Body is populated.
type OpCode int32

const (
	OpCreate OpCode = iota
	OpCreate2
	OpCreateTTL
	OpCreateContainer
	OpDelete
	OpDeleteContainer
	OpSetData
	OpReconfig
	OpSetACL
	OpCloseSession
	OpError
	OpCheck
	OpMulti
)

func (op OpCode) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpCreate2:
		return "create2"
	case OpCreateTTL:
		return "createTTL"
	case OpCreateContainer:
		return "createContainer"
	case OpDelete:
		return "delete"
	case OpDeleteContainer:
		return "deleteContainer"
	case OpSetData:
		return "setData"
	case OpReconfig:
		return "reconfig"
	case OpSetACL:
		return "setACL"
	case OpCloseSession:
		return "closeSession"
	case OpError:
		return "error"
	case OpCheck:
		return "check"
	case OpMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// Header carries the fields common to every transaction regardless of
// body type.
type Header struct {
	ClientID int64  `cbor:"clientId"`
	Cxid     int32  `cbor:"cxid"`
	Zxid     int64  `cbor:"zxid"`
	Time     int64  `cbor:"time"`
	Type     OpCode `cbor:"type"`
}

type CreateTxn struct {
	Path string `cbor:"path"`
	Data []byte `cbor:"data"`
	ACL  []acl.Entry `cbor:"acl"`
	// EphemeralOwner is the already-encoded ephemeral.Encode(...) tag; the
	// caller decides NORMAL/CONTAINER/TTL before building the txn.
	EphemeralOwner int64 `cbor:"ephemeralOwner"`
	// ParentCVersion is -1 to derive the next cversion from the parent, or
	// an authoritative value assigned upstream.
	ParentCVersion int32 `cbor:"parentCVersion"`
}

type DeleteTxn struct {
	Path string `cbor:"path"`
}

type SetDataTxn struct {
	Path    string `cbor:"path"`
	Data    []byte `cbor:"data"`
	Version int32  `cbor:"version"`
}

type SetACLTxn struct {
	Path    string      `cbor:"path"`
	ACL     []acl.Entry `cbor:"acl"`
	Version int32       `cbor:"version"`
}

type CheckVersionTxn struct {
	Path    string `cbor:"path"`
	Version int32  `cbor:"version"`
}

type ErrorTxn struct {
	Err int32 `cbor:"err"`
}

// MultiOp is one op inside a multi transaction. Unlike a top-level
// transaction it carries its own Type, since a multi's Header.Type is
// just OpMulti and gives no clue which field of Body a given op uses.
type MultiOp struct {
	Type OpCode `cbor:"type"`
	Body Body   `cbor:"body"`
}

type MultiTxn struct {
	Ops []MultiOp `cbor:"ops"`
}

// Body is a tagged union: exactly one field should be non-nil, selected by
// the sibling Header.Type for a top-level transaction, or by the sibling
// MultiOp.Type for an op inside a multi.
type Body struct {
	Create  *CreateTxn       `cbor:"create,omitempty"`
	Delete  *DeleteTxn       `cbor:"delete,omitempty"`
	SetData *SetDataTxn      `cbor:"setData,omitempty"`
	SetACL  *SetACLTxn       `cbor:"setACL,omitempty"`
	Check   *CheckVersionTxn `cbor:"check,omitempty"`
	Error   *ErrorTxn        `cbor:"error,omitempty"`
	Multi   *MultiTxn        `cbor:"multi,omitempty"`
}

// Result mirrors a single ProcessTxnResult. Key is the (clientId, cxid)
// pair callers use to correlate it back to the originating request.
type Result struct {
	ClientID     int64
	Cxid         int32
	Zxid         int64
	Type         OpCode
	Path         string
	Err          int32
	Stat         *znode.StatPersisted
	MultiResults []Result
}

func (r Result) Key() (int64, int32) {
	return r.ClientID, r.Cxid
}
