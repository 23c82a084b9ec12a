package des

type DESKeySchedule struct{}

// GenerateRoundKeys derives the sixteen round keys from a 64-bit key. Parity
// bits are discarded by PC1 and never checked.
func (dks *DESKeySchedule) GenerateRoundKeys(masterKey uint64) (RoundKeys, error) {
	var roundKeys RoundKeys

	permutedKey := PermuteBits(masterKey, 64, permutedChoice1[:])

	c := uint32(permutedKey >> 28)
	d := uint32(permutedKey)

	// Rotations compound, so round i depends on every shift before it.
	for round := 0; round < Rounds; round++ {
		c = rotateLeft28(c, shiftSchedule[round])
		d = rotateLeft28(d, shiftSchedule[round])

		cd := uint64(c)<<28 | uint64(d)
		roundKeys[round] = PermuteBits(cd, 56, permutedChoice2[:])
	}

	return roundKeys, nil
}
