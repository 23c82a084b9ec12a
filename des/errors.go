package des

import "errors"

var (
	ErrInvalidKeySize     = errors.New("DES key must be 8 bytes (64 bits)")
	ErrInvalidIVSize      = errors.New("IV must be 8 bytes (64 bits)")
	ErrMissingIV          = errors.New("mode requires an IV")
	ErrUnsupportedMode    = errors.New("unsupported cipher mode")
	ErrUnsupportedPadding = errors.New("unsupported padding mode")
	ErrInvalidCiphertext  = errors.New("ciphertext must be a non-empty multiple of the block size")
	ErrUnalignedData      = errors.New("data must be a multiple of the block size without padding")
	ErrInvalidPadding     = errors.New("invalid padding")
)
