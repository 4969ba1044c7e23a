package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathTrie_FindMaxPrefix(t *testing.T) {
	pt := New()
	pt.AddPath("/foo")
	pt.AddPath("/foo/bar")

	assert.Equal(t, "/foo", pt.FindMaxPrefix("/foo"))
	assert.Equal(t, "/foo/bar", pt.FindMaxPrefix("/foo/bar/baz"))
	assert.Equal(t, "/foo", pt.FindMaxPrefix("/foo/qux"))
	assert.Equal(t, "", pt.FindMaxPrefix("/other"))
}

func TestPathTrie_DeletePath(t *testing.T) {
	pt := New()
	pt.AddPath("/foo")
	pt.DeletePath("/foo")

	assert.Equal(t, "", pt.FindMaxPrefix("/foo"))
}

func TestPathTrie_DeleteUnknownPathIsNoop(t *testing.T) {
	pt := New()
	pt.DeletePath("/never-added")
	assert.Equal(t, "", pt.FindMaxPrefix("/never-added"))
}
