// Package quota formats and parses the "zookeeper_stats"/"zookeeper_limits"
// data blobs the data tree keeps under /zookeeper/quota.
package quota

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	LimitNode = "zookeeper_limits"
	StatNode  = "zookeeper_stats"
)

// Stats is the decoded form of a "count=N,bytes=M" blob. A negative value
// means "no limit" when Stats represents a zookeeper_limits node.
type Stats struct {
	Count int64
	Bytes int64
}

func FormatStats(s Stats) []byte {
	return []byte(fmt.Sprintf("count=%d,bytes=%d", s.Count, s.Bytes))
}

func ParseStats(data []byte) (Stats, error) {
	var s Stats
	fields := strings.Split(string(data), ",")
	if len(fields) != 2 {
		return s, fmt.Errorf("quota: malformed stats blob %q", data)
	}
	for _, f := range fields {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			return s, fmt.Errorf("quota: malformed stats field %q", f)
		}
		v, err := strconv.ParseInt(kv[1], 10, 64)
		if err != nil {
			return s, fmt.Errorf("quota: malformed stats value %q: %w", f, err)
		}
		switch kv[0] {
		case "count":
			s.Count = v
		case "bytes":
			s.Bytes = v
		default:
			return s, fmt.Errorf("quota: unknown stats field %q", kv[0])
		}
	}
	return s, nil
}

// Exceeded reports whether current breaches limit on either dimension. A
// limit value <= 0 means "unbounded" on that dimension.
func Exceeded(limit, current Stats) bool {
	if limit.Count > 0 && current.Count > limit.Count {
		return true
	}
	if limit.Bytes > 0 && current.Bytes > limit.Bytes {
		return true
	}
	return false
}
