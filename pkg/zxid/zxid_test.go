package zxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewZXID_PacksEpochAndCounter(t *testing.T) {
	z := NewZXID(1, 42)
	assert.EqualValues(t, 1, z.GetEpoch())
	assert.EqualValues(t, 42, z.GetCounter())
}

func TestNext_IncrementsCounterWithinEpoch(t *testing.T) {
	z := NewZXID(3, 10)
	next := z.Next()
	assert.EqualValues(t, 3, next.GetEpoch())
	assert.EqualValues(t, 11, next.GetCounter())
}

func TestZXID_TotalOrder(t *testing.T) {
	a := NewZXID(1, 5)
	b := NewZXID(2, 0)
	assert.Less(t, int64(a), int64(b))
}
