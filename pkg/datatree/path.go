package datatree

import (
	"fmt"
	"strings"
)

// resolvePath maps the root alias "" onto "/" so callers can use either
// spelling for the root node.
func resolvePath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

// validatePath rejects anything that isn't a well-formed absolute path:
// must start with "/", must not be "/" itself, must not end in "/", and
// must not contain an empty segment.
func validatePath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path must start with /: %q", path)
	}
	if path == "/" {
		return fmt.Errorf("path must not be the root: %q", path)
	}
	if strings.HasSuffix(path, "/") {
		return fmt.Errorf("path must not end with /: %q", path)
	}
	for _, seg := range strings.Split(path[1:], "/") {
		if seg == "" {
			return fmt.Errorf("path must not contain an empty segment: %q", path)
		}
	}
	return nil
}

// SplitPath splits path into its parent path and final segment name. The
// parent of a top-level path ("/a") is "/".
func SplitPath(path string) (parent, child string, err error) {
	if err := validatePath(path); err != nil {
		return "", "", err
	}
	idx := strings.LastIndex(path, "/")
	parent = path[:idx]
	if parent == "" {
		parent = "/"
	}
	child = path[idx+1:]
	return parent, child, nil
}

// joinChild builds the full path of a child segment under parent.
func joinChild(parent, child string) string {
	if parent == "/" {
		return "/" + child
	}
	return parent + "/" + child
}
