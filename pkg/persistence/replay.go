package persistence

import (
	"fmt"

	"github.com/mikekulinski/ztree/pkg/datatree"
	"github.com/mikekulinski/ztree/pkg/txn"
)

// Replay loads the newest snapshot under snapDir (if any) into tree, then
// feeds every log entry under logDir with a larger zxid through a fresh
// Processor, in order. The returned Processor's LastProcessedZxid reflects
// the result.
func Replay(snapDir, logDir string, tree *datatree.DataTree) (*txn.Processor, error) {
	sm, err := NewSnapshotManager(snapDir)
	if err != nil {
		return nil, fmt.Errorf("replay: error opening snapshot directory: %w", err)
	}

	latest, err := sm.Latest()
	if err != nil {
		return nil, fmt.Errorf("replay: error finding latest snapshot: %w", err)
	}
	if latest > 0 {
		if err := sm.Load(latest, tree); err != nil {
			return nil, fmt.Errorf("replay: error loading snapshot %d: %w", latest, err)
		}
	}

	lm, err := NewLogManager(logDir)
	if err != nil {
		return nil, fmt.Errorf("replay: error opening log directory: %w", err)
	}
	entries, err := lm.ReadFrom(latest)
	if err != nil {
		return nil, fmt.Errorf("replay: error reading log: %w", err)
	}

	proc := txn.NewProcessor(tree)
	for _, e := range entries {
		proc.ProcessTxn(e.Header, e.Body)
	}
	return proc, nil
}
