package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/mikekulinski/ztree/pkg/txn"
)

const (
	LogFilePrefix      = "log"
	SnapshotFilePrefix = "snapshot"
)

// Entry is a single logged (header, body) pair read back off disk.
type Entry struct {
	Header txn.Header
	Body   txn.Body
}

// LogManager is a Write-Ahead Log (WAL) for the data tree. We model this as
// a new file for each transaction being written to our log. Each file is
// stored in the directory provided, and follows the naming convention
// "{log_directory}/log_{zxid}".
type LogManager struct {
	// mu is a mutex that protects all the fields in the LogManager. In
	// order to keep LogManager thread-safe, we should hold the lock
	// before reading/writing to any of its fields.
	mu       *sync.Mutex
	logPath  string
	LastZxid int64
}

func NewLogManager(logPath string) (*LogManager, error) {
	// Make sure to trim any trailing slashes if the provided path contains one.
	logPath = strings.TrimSuffix(logPath, "/")

	fileInfo, err := os.Stat(logPath)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		return nil, fmt.Errorf("file path does not point to a directory")
	}
	return &LogManager{
		mu:      &sync.Mutex{},
		logPath: logPath,
	}, nil
}

// Append will append the given transaction to the log. We do this by
// writing to a new file on the filesystem.
func (l *LogManager) Append(header txn.Header, body txn.Body) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if header.Zxid <= l.LastZxid {
		return fmt.Errorf("transaction has already been added to the log")
	}

	fileName := fmt.Sprintf("%s/%s_%d", l.logPath, LogFilePrefix, header.Zxid)
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("error creating new file: %w", err)
	}
	defer file.Close()

	data, err := cbor.Marshal(Entry{Header: header, Body: body})
	if err != nil {
		return fmt.Errorf("error marshalling txn: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("error writing transaction to file: %w", err)
	}

	// Update the last seen ZXID to be equal to the transaction we just
	// wrote. Do this after successfully writing the transaction to a file.
	l.LastZxid = header.Zxid
	return nil
}

// ReadFrom returns every logged entry with a zxid greater than afterZxid,
// in zxid order.
func (l *LogManager) ReadFrom(afterZxid int64) ([]Entry, error) {
	dirEntries, err := os.ReadDir(l.logPath)
	if err != nil {
		return nil, fmt.Errorf("error reading log directory: %w", err)
	}

	var out []Entry
	for _, de := range dirEntries {
		zxid, ok := parseZxidSuffix(de.Name(), LogFilePrefix)
		if !ok || zxid <= afterZxid {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.logPath, de.Name()))
		if err != nil {
			return nil, fmt.Errorf("error reading log file %s: %w", de.Name(), err)
		}
		var e Entry
		if err := cbor.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("error unmarshalling log file %s: %w", de.Name(), err)
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Header.Zxid < out[j].Header.Zxid })
	return out, nil
}

// parseZxidSuffix extracts the numeric suffix of a "{prefix}_{zxid}" file
// name, e.g. parseZxidSuffix("log_42", "log") -> (42, true).
func parseZxidSuffix(name, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(name, prefix+"_")
	if rest == name {
		return 0, false
	}
	zxid, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return zxid, true
}
