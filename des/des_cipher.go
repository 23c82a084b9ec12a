package des

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

// DESCipher is single-key DES. Once a key is set it is safe for concurrent
// use; SetKey publishes a freshly generated round-key set atomically.
type DESCipher struct {
	feistel *FeistelNetwork
}

var _ cipher.Block = (*DESCipher)(nil)
var _ ISymmetricCipher = (*DESCipher)(nil)

func newDESCipher() *DESCipher {
	// Both implementations are non-nil, NewFeistelNetwork cannot fail here.
	feistel, _ := NewFeistelNetwork(&DESKeySchedule{}, &DESRoundFunction{})
	return &DESCipher{feistel: feistel}
}

// NewDESCipher creates a cipher from an 8-byte key.
func NewDESCipher(key []uint8) (*DESCipher, error) {
	des := newDESCipher()
	if err := des.SetKey(key); err != nil {
		return nil, err
	}
	return des, nil
}

// NewDESCipherFromUint64 creates a cipher from a 64-bit key.
func NewDESCipherFromUint64(key uint64) (*DESCipher, error) {
	des := newDESCipher()
	if err := des.feistel.SetKey(key); err != nil {
		return nil, fmt.Errorf("failed to set key in feistel network: %w", err)
	}
	return des, nil
}

func (des *DESCipher) SetKey(key []uint8) error {
	if len(key) != BlockSize {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	err := des.feistel.SetKey(BlockFromBytes(key))
	if err != nil {
		return fmt.Errorf("failed to set key in feistel network: %w", err)
	}

	return nil
}

// RoundKeys returns a copy of the active round keys.
func (des *DESCipher) RoundKeys() RoundKeys {
	keys, _ := des.feistel.RoundKeys()
	return keys
}

func (des *DESCipher) EncryptBlock(plainBlock uint64) uint64 {
	permuted := PermuteBits(plainBlock, 64, initialPermutation[:])
	return PermuteBits(des.feistel.EncryptBlock(permuted), 64, finalPermutation[:])
}

func (des *DESCipher) DecryptBlock(cipherBlock uint64) uint64 {
	permuted := PermuteBits(cipherBlock, 64, initialPermutation[:])
	return PermuteBits(des.feistel.DecryptBlock(permuted), 64, finalPermutation[:])
}

func (des *DESCipher) BlockSize() int { return BlockSize }

func (des *DESCipher) Encrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("des: input not full block")
	}
	if len(dst) < BlockSize {
		panic("des: output not full block")
	}
	binary.BigEndian.PutUint64(dst, des.EncryptBlock(binary.BigEndian.Uint64(src)))
}

func (des *DESCipher) Decrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("des: input not full block")
	}
	if len(dst) < BlockSize {
		panic("des: output not full block")
	}
	binary.BigEndian.PutUint64(dst, des.DecryptBlock(binary.BigEndian.Uint64(src)))
}

// BlockFromBytes reads a big-endian block from the first 8 bytes of b.
func BlockFromBytes(b []uint8) uint64 {
	return binary.BigEndian.Uint64(b)
}

// BlockToBytes returns the big-endian encoding of block.
func BlockToBytes(block uint64) []uint8 {
	out := make([]uint8, BlockSize)
	binary.BigEndian.PutUint64(out, block)
	return out
}
