package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckedAdd(t *testing.T) {
	sum, ok := CheckedAdd(1, 2)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), sum)

	_, ok = CheckedAdd(math.MaxUint64, 1)
	assert.False(t, ok)

	sum, ok = CheckedAdd(math.MaxUint64, 0)
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), sum)
}

func TestCheckedSub(t *testing.T) {
	diff, ok := CheckedSub(5, 3)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), diff)

	_, ok = CheckedSub(3, 5)
	assert.False(t, ok)

	diff, ok = CheckedSub(3, 3)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), diff)
}

func TestCheckedMul(t *testing.T) {
	prod, ok := CheckedMul(1_000_000_000, 1_000_000)
	assert.True(t, ok)
	assert.Equal(t, uint64(1_000_000_000_000_000), prod)

	_, ok = CheckedMul(math.MaxUint64, 2)
	assert.False(t, ok)

	prod, ok = CheckedMul(0, math.MaxUint64)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), prod)
}

func TestCheckedDiv(t *testing.T) {
	q, ok := CheckedDiv(7, 2)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), q)

	_, ok = CheckedDiv(1, 0)
	assert.False(t, ok)
}

func TestPow10(t *testing.T) {
	v, ok := Pow10(6)
	assert.True(t, ok)
	assert.Equal(t, uint64(1_000_000), v)

	v, ok = Pow10(0)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), v)

	v, ok = Pow10(19)
	assert.True(t, ok)
	assert.Equal(t, uint64(10_000_000_000_000_000_000), v)

	_, ok = Pow10(20)
	assert.False(t, ok)
}
