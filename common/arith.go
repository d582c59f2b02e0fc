package common

import "github.com/nspcc-dev/neo-go/pkg/interop/convert"

const (
	// ErrOverflow is thrown by CheckedAdd when the sum leaves the
	// unsigned 128-bit range.
	ErrOverflow = "integer overflow"
	// ErrUnderflow is thrown by CheckedSub when the subtrahend is
	// bigger than the minuend.
	ErrUnderflow = "integer underflow"
)

// maxAmount returns 2^128-1, the biggest value a stored amount may take.
// NeoVM integers are wider, so the bound is enforced explicitly. The value
// is built from bytes because Go constants can't exceed 64 bits.
func maxAmount() int {
	return convert.ToInteger([]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x00,
	})
}

// CheckedAdd returns a+b. It panics with ErrOverflow if the sum does not
// fit into 128 bits. Arguments must be non-negative.
func CheckedAdd(a, b int) int {
	c := a + b
	if c > maxAmount() {
		panic(ErrOverflow)
	}
	return c
}

// CheckedSub returns a-b. It panics with ErrUnderflow if b is greater
// than a. Arguments must be non-negative.
func CheckedSub(a, b int) int {
	if b > a {
		panic(ErrUnderflow)
	}
	return a - b
}
