package des

// Rounds is the number of Feistel rounds and round keys in DES.
const Rounds = 16

// BlockSize is the DES block size in bytes.
const BlockSize = 8

// RoundKeys holds the sixteen 48-bit round keys, in round order.
type RoundKeys [Rounds]uint64

type IKeySchedule interface {
	GenerateRoundKeys(masterKey uint64) (RoundKeys, error)
}

type IRoundFunction interface {
	Apply(half uint32, roundKey uint64) uint32
}

type ISymmetricCipher interface {
	SetKey(key []uint8) error
	EncryptBlock(plainBlock uint64) uint64
	DecryptBlock(cipherBlock uint64) uint64
}
