package utils

import "math"

// Overflow-checked uint64 arithmetic for balances and running totals.
// The second return value is false when the operation would overflow (or
// divide by zero); callers must reject the whole instruction in that case,
// never saturate or wrap.

// CheckedAdd returns a+b, or false on overflow.
func CheckedAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// CheckedSub returns a-b, or false when b > a.
func CheckedSub(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// CheckedMul returns a*b, or false on overflow.
func CheckedMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

// CheckedDiv returns a/b (floor), or false when b == 0.
func CheckedDiv(a, b uint64) (uint64, bool) {
	if b == 0 {
		return 0, false
	}
	return a / b, true
}

// Pow10 returns 10^n, or false when the result does not fit in uint64 (n > 19).
func Pow10(n uint8) (uint64, bool) {
	if n > 19 {
		return 0, false
	}
	result := uint64(1)
	for i := uint8(0); i < n; i++ {
		result *= 10
	}
	return result, true
}
