package des

import "fmt"

// PermuteBits builds a len(rule)-bit value whose i-th bit (counted from the
// most significant end) is bit rule[i] of the inBits-wide input. Positions in
// rule are 1-based and also counted from the most significant end.
//
// Out-of-range positions are programming errors and panic.
func PermuteBits(value uint64, inBits int, rule []uint8) uint64 {
	if inBits < 1 || inBits > 64 {
		panic(fmt.Sprintf("des: input width %d out of range", inBits))
	}
	if len(rule) > 64 {
		panic(fmt.Sprintf("des: permutation produces %d bits, max 64", len(rule)))
	}

	var result uint64
	for _, pos := range rule {
		if pos < 1 || int(pos) > inBits {
			panic(fmt.Sprintf("des: position %d out of bounds for %d-bit input", pos, inBits))
		}
		result = result<<1 | (value>>(inBits-int(pos)))&1
	}

	return result
}

// rotateLeft28 rotates the low 28 bits of v.
func rotateLeft28(v uint32, shifts uint8) uint32 {
	const mask28 = 1<<28 - 1

	v &= mask28
	return (v<<shifts | v>>(28-shifts)) & mask28
}
