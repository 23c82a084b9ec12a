package des

type DESRoundFunction struct{}

// Apply computes F(R, K) = P(S(E(R) xor K)).
func (drf *DESRoundFunction) Apply(half uint32, roundKey uint64) uint32 {
	expanded := PermuteBits(uint64(half), 32, expansion[:])
	substituted := substitute(expanded ^ roundKey)

	return uint32(PermuteBits(uint64(substituted), 32, roundPermutation[:]))
}

// substitute runs the 48-bit input through the eight S-boxes, six bits per
// box starting from the most significant end.
func substitute(value uint64) uint32 {
	var result uint32

	for box := 0; box < 8; box++ {
		group := uint8(value>>(42-6*box)) & 0x3F

		row := (group>>4)&0x2 | group&0x1
		column := (group >> 1) & 0xF

		result = result<<4 | uint32(sBoxes[box][row][column])
	}

	return result
}
