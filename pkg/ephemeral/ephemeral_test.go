package ephemeral

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode_Void(t *testing.T) {
	typ, _ := Decode(0)
	assert.Equal(t, Void, typ)
}

func TestEncodeDecode_Normal(t *testing.T) {
	owner := Encode(Normal, 42, 0)
	typ, _ := Decode(owner)
	assert.Equal(t, Normal, typ)
	assert.EqualValues(t, 42, owner)
}

func TestEncodeDecode_Container(t *testing.T) {
	owner := Encode(Container, 0, 0)
	typ, _ := Decode(owner)
	assert.Equal(t, Container, typ)
}

func TestEncodeDecode_TTL(t *testing.T) {
	owner := Encode(TTL, 0, 5000)
	typ, ttl := Decode(owner)
	assert.Equal(t, TTL, typ)
	assert.EqualValues(t, 5000, ttl)
}

func TestIsOwnedBySession(t *testing.T) {
	owner := Encode(Normal, 7, 0)
	assert.True(t, IsOwnedBySession(owner, 7))
	assert.False(t, IsOwnedBySession(owner, 8))
	assert.False(t, IsOwnedBySession(Encode(Container, 0, 0), 7))
}
