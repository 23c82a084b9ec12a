package des

import (
	"context"
	"fmt"
	"sync"
)

// CipherContext runs DES modes of operation over whole messages. Every call
// works on its own feedback register seeded from the IV, so a context can be
// shared between goroutines; SetKey and SetIV are serialized against calls.
type CipherContext struct {
	mu sync.RWMutex

	cipher      ISymmetricCipher
	paddingMode PaddingMode
	iv          []uint8
	parallel    bool
}

// NewCipherContext wraps cipher. iv may be nil when only ECB is used; a
// non-nil iv must be 8 bytes. parallel lets ECB spread blocks over all CPUs.
func NewCipherContext(
	cipher ISymmetricCipher,
	iv []uint8,
	paddingMode PaddingMode,
	parallel bool,
) (*CipherContext, error) {

	if cipher == nil {
		return nil, fmt.Errorf("cipher implementation cannot be nil")
	}
	if paddingMode < PaddingModePKCS7 || paddingMode > PaddingModeNone {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPadding, paddingMode)
	}

	cc := &CipherContext{
		cipher:      cipher,
		paddingMode: paddingMode,
		parallel:    parallel,
	}

	if iv != nil {
		if err := cc.SetIV(iv); err != nil {
			return nil, err
		}
	}

	return cc, nil
}

// SetKey replaces the key of the underlying cipher.
func (cc *CipherContext) SetKey(newKey []uint8) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if err := cc.cipher.SetKey(newKey); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// SetIV replaces the IV; nil clears it.
func (cc *CipherContext) SetIV(newIV []uint8) error {
	if newIV != nil && len(newIV) != BlockSize {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidIVSize, len(newIV))
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()

	if newIV == nil {
		cc.iv = nil
		return nil
	}
	cc.iv = make([]uint8, BlockSize)
	copy(cc.iv, newIV)
	return nil
}

// IV returns a copy of the current IV, or nil.
func (cc *CipherContext) IV() []uint8 {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	if cc.iv == nil {
		return nil
	}
	iv := make([]uint8, len(cc.iv))
	copy(iv, cc.iv)
	return iv
}

func (cc *CipherContext) PaddingMode() PaddingMode {
	return cc.paddingMode
}

// prepare resolves the mode and snapshots the IV. Configuration problems are
// reported here, before any data is touched.
func (cc *CipherContext) prepare(mode CipherMode) (modeEngine, modeRun, error) {
	engine, err := mode.engine()
	if err != nil {
		return nil, modeRun{}, err
	}

	run := modeRun{cipher: cc.cipher, parallel: cc.parallel}
	if mode.RequiresIV() {
		if cc.iv == nil {
			return nil, modeRun{}, fmt.Errorf("%w: %v", ErrMissingIV, mode)
		}
		run.iv = BlockFromBytes(cc.iv)
	}

	return engine, run, nil
}

// Encrypt encrypts plaintext in the given mode. ECB and CBC pad the message
// first; the feedback modes return exactly len(plaintext) bytes.
func (cc *CipherContext) Encrypt(ctx context.Context, plaintext []uint8, mode CipherMode) ([]uint8, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	engine, run, err := cc.prepare(mode)
	if err != nil {
		return nil, err
	}

	src := plaintext
	if engine.padded() {
		src, err = applyPadding(plaintext, cc.paddingMode)
		if err != nil {
			return nil, fmt.Errorf("padding failed: %w", err)
		}
	}

	ciphertext := make([]uint8, len(src))
	if err := engine.encrypt(ctx, run, ciphertext, src); err != nil {
		return nil, fmt.Errorf("%v encryption failed: %w", mode, err)
	}

	return ciphertext, nil
}

// Decrypt reverses Encrypt. For ECB and CBC the padding is validated and a
// message with bad padding yields ErrInvalidPadding and no plaintext.
func (cc *CipherContext) Decrypt(ctx context.Context, ciphertext []uint8, mode CipherMode) ([]uint8, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	engine, run, err := cc.prepare(mode)
	if err != nil {
		return nil, err
	}

	if engine.padded() && (len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0) {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidCiphertext, len(ciphertext))
	}

	plaintext := make([]uint8, len(ciphertext))
	if err := engine.decrypt(ctx, run, plaintext, ciphertext); err != nil {
		return nil, fmt.Errorf("%v decryption failed: %w", mode, err)
	}

	if !engine.padded() {
		return plaintext, nil
	}

	unpadded, err := removePadding(plaintext, cc.paddingMode)
	if err != nil {
		return nil, fmt.Errorf("%v decryption failed: %w", mode, err)
	}
	return unpadded, nil
}
