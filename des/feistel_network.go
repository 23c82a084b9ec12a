package des

import (
	"fmt"
	"sync/atomic"
)

type FeistelNetwork struct {
	keySchedule   IKeySchedule
	roundFunction IRoundFunction

	// roundKeys is replaced as a whole on every SetKey; nil until a key is set.
	roundKeys atomic.Pointer[RoundKeys]
}

func NewFeistelNetwork(
	keyScheduleImpl IKeySchedule,
	roundFunctionImpl IRoundFunction,
) (*FeistelNetwork, error) {

	if keyScheduleImpl == nil {
		return nil, fmt.Errorf("key schedule implementation cannot be nil")
	}
	if roundFunctionImpl == nil {
		return nil, fmt.Errorf("round function implementation cannot be nil")
	}

	return &FeistelNetwork{
		keySchedule:   keyScheduleImpl,
		roundFunction: roundFunctionImpl,
	}, nil
}

func (fn *FeistelNetwork) SetKey(key uint64) error {
	roundKeys, err := fn.keySchedule.GenerateRoundKeys(key)
	if err != nil {
		return fmt.Errorf("failed to generate round keys: %w", err)
	}

	fn.roundKeys.Store(&roundKeys)
	return nil
}

// RoundKeys returns a copy of the current round keys and whether a key is set.
func (fn *FeistelNetwork) RoundKeys() (RoundKeys, bool) {
	keys := fn.roundKeys.Load()
	if keys == nil {
		return RoundKeys{}, false
	}
	return *keys, true
}

func (fn *FeistelNetwork) loadKeys() *RoundKeys {
	keys := fn.roundKeys.Load()
	if keys == nil {
		panic("des: key not set, call SetKey before processing blocks")
	}
	return keys
}

// EncryptBlock runs the sixteen rounds with keys in order 0..15. The halves
// are emitted as R16||L16, which undoes the swap of the last round.
func (fn *FeistelNetwork) EncryptBlock(block uint64) uint64 {
	keys := fn.loadKeys()

	left, right := uint32(block>>32), uint32(block)
	for round := 0; round < Rounds; round++ {
		left, right = right, left^fn.roundFunction.Apply(right, keys[round])
	}

	return uint64(right)<<32 | uint64(left)
}

// DecryptBlock is EncryptBlock with the round keys consumed in reverse.
func (fn *FeistelNetwork) DecryptBlock(block uint64) uint64 {
	keys := fn.loadKeys()

	left, right := uint32(block>>32), uint32(block)
	for round := Rounds - 1; round >= 0; round-- {
		left, right = right, left^fn.roundFunction.Apply(right, keys[round])
	}

	return uint64(right)<<32 | uint64(left)
}
