package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikekulinski/ztree/pkg/datatree"
	"github.com/mikekulinski/ztree/pkg/log"
	"github.com/mikekulinski/ztree/pkg/zkerrors"
)

func newTestProcessor() (*Processor, *datatree.DataTree) {
	tree := datatree.New(log.New("test"))
	return NewProcessor(tree), tree
}

func TestProcessTxn_Create(t *testing.T) {
	p, tree := newTestProcessor()

	rc := p.ProcessTxn(Header{ClientID: 1, Cxid: 1, Zxid: 1, Type: OpCreate}, Body{
		Create: &CreateTxn{Path: "/a", Data: []byte("x"), ParentCVersion: -1},
	})

	assert.EqualValues(t, zkerrors.OK, rc.Err)
	require.NotNil(t, rc.Stat)
	data, _, err := tree.GetData("/a", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
	assert.EqualValues(t, 1, p.LastProcessedZxid())
}

func TestProcessTxn_CloseSessionDeletesEphemeral(t *testing.T) {
	p, tree := newTestProcessor()

	p.ProcessTxn(Header{ClientID: 5, Zxid: 1, Type: OpCreate}, Body{
		Create: &CreateTxn{Path: "/e", EphemeralOwner: 5, ParentCVersion: -1},
	})

	rc := p.ProcessTxn(Header{ClientID: 5, Zxid: 2, Type: OpCloseSession}, Body{})
	assert.EqualValues(t, zkerrors.OK, rc.Err)

	_, _, err := tree.GetData("/e", nil)
	assert.Equal(t, zkerrors.NoNode, zkerrors.CodeOf(err))
}

func TestProcessTxn_RestoreTimeRepairOnNodeExists(t *testing.T) {
	p, tree := newTestProcessor()

	_, err := tree.CreateNode("/p", nil, nil, 0, -1, 50, 0)
	require.NoError(t, err)
	// Simulate a snapshot that already captured "/p/c" before the log
	// replay reaches the create that produced it.
	_, err = tree.CreateNode("/p/c", nil, nil, 0, -1, 51, 0)
	require.NoError(t, err)

	rc := p.ProcessTxn(Header{Zxid: 51, Type: OpCreate}, Body{
		Create: &CreateTxn{Path: "/p/c", ParentCVersion: 6},
	})

	assert.EqualValues(t, zkerrors.NodeExists, rc.Err)
	_, stat, err := tree.GetChildren("/p", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 6, stat.Cversion)
	assert.EqualValues(t, 51, stat.Pzxid)
}

// S3 - a multi with a mid-stream error marker rewrites every op (both
// before and after the marker) into an error result, and applies none of
// them.
func TestProcessTxn_MultiWithMidStreamError(t *testing.T) {
	p, tree := newTestProcessor()

	rc := p.ProcessTxn(Header{Zxid: 1, Type: OpMulti}, Body{
		Multi: &MultiTxn{Ops: []MultiOp{
			{Type: OpCreate, Body: Body{Create: &CreateTxn{Path: "/x", ParentCVersion: -1}}},
			{Type: OpError, Body: Body{Error: &ErrorTxn{Err: int32(zkerrors.NoNode)}}},
			{Type: OpCreate, Body: Body{Create: &CreateTxn{Path: "/y", ParentCVersion: -1}}},
		}},
	})

	require.Len(t, rc.MultiResults, 3)
	assert.EqualValues(t, zkerrors.OK, rc.MultiResults[0].Err)
	assert.EqualValues(t, zkerrors.NoNode, rc.MultiResults[1].Err)
	assert.EqualValues(t, zkerrors.RuntimeInconsistency, rc.MultiResults[2].Err)
	assert.NotEqualValues(t, zkerrors.OK, rc.Err)

	_, _, err := tree.GetData("/x", nil)
	assert.Equal(t, zkerrors.NoNode, zkerrors.CodeOf(err))
	_, _, err = tree.GetData("/y", nil)
	assert.Equal(t, zkerrors.NoNode, zkerrors.CodeOf(err))
}

func TestProcessTxn_MultiWithoutErrorApplies(t *testing.T) {
	p, tree := newTestProcessor()

	rc := p.ProcessTxn(Header{Zxid: 1, Type: OpMulti}, Body{
		Multi: &MultiTxn{Ops: []MultiOp{
			{Type: OpCreate, Body: Body{Create: &CreateTxn{Path: "/x", ParentCVersion: -1}}},
			{Type: OpCreate, Body: Body{Create: &CreateTxn{Path: "/y", ParentCVersion: -1}}},
		}},
	})

	for _, sub := range rc.MultiResults {
		assert.EqualValues(t, zkerrors.OK, sub.Err)
	}
	_, _, err := tree.GetData("/x", nil)
	assert.NoError(t, err)
	_, _, err = tree.GetData("/y", nil)
	assert.NoError(t, err)
}

// P6 - LastProcessedZxid never decreases.
func TestLastProcessedZxid_Monotonic(t *testing.T) {
	p, _ := newTestProcessor()
	p.ProcessTxn(Header{Zxid: 5, Type: OpCheck}, Body{Check: &CheckVersionTxn{Path: "/"}})
	p.ProcessTxn(Header{Zxid: 3, Type: OpCheck}, Body{Check: &CheckVersionTxn{Path: "/"}})
	assert.EqualValues(t, 5, p.LastProcessedZxid())
}
