package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mikekulinski/ztree/pkg/datatree"
	"github.com/mikekulinski/ztree/pkg/snapshot"
)

// SnapshotManager writes and reads whole-tree snapshot files, named
// "{snapPath}/snapshot_{zxid}".
type SnapshotManager struct {
	mu       *sync.Mutex
	snapPath string
}

func NewSnapshotManager(snapPath string) (*SnapshotManager, error) {
	snapPath = strings.TrimSuffix(snapPath, "/")

	fileInfo, err := os.Stat(snapPath)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		return nil, fmt.Errorf("file path does not point to a directory")
	}
	return &SnapshotManager{
		mu:       &sync.Mutex{},
		snapPath: snapPath,
	}, nil
}

// Write serializes tree to a new snapshot file keyed by zxid.
func (s *SnapshotManager) Write(zxid int64, tree *datatree.DataTree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileName := fmt.Sprintf("%s/%s_%d", s.snapPath, SnapshotFilePrefix, zxid)
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("error creating snapshot file: %w", err)
	}
	defer file.Close()

	return snapshot.Write(file, tree)
}

// Latest returns the zxid of the newest snapshot on disk, or 0 if there is
// none yet.
func (s *SnapshotManager) Latest() (int64, error) {
	dirEntries, err := os.ReadDir(s.snapPath)
	if err != nil {
		return 0, fmt.Errorf("error reading snapshot directory: %w", err)
	}

	var latest int64
	for _, de := range dirEntries {
		zxid, ok := parseZxidSuffix(de.Name(), SnapshotFilePrefix)
		if !ok {
			continue
		}
		if zxid > latest {
			latest = zxid
		}
	}
	return latest, nil
}

// Load deserializes the snapshot file at zxid into tree.
func (s *SnapshotManager) Load(zxid int64, tree *datatree.DataTree) error {
	fileName := fmt.Sprintf("%s/%s_%d", s.snapPath, SnapshotFilePrefix, zxid)
	file, err := os.Open(filepath.Clean(fileName))
	if err != nil {
		return fmt.Errorf("error opening snapshot file: %w", err)
	}
	defer file.Close()

	return snapshot.Read(file, tree)
}
