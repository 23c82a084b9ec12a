package des

import (
	"context"
	"encoding/binary"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

type CipherMode int

const (
	CipherModeECB CipherMode = iota
	CipherModeCBC
	CipherModeCFB
	CipherModeOFB
	CipherModeCFB8
	CipherModeOFB8

	cipherModeCount
)

func (cm CipherMode) String() string {
	switch cm {
	case CipherModeECB:
		return "ECB"
	case CipherModeCBC:
		return "CBC"
	case CipherModeCFB:
		return "CFB"
	case CipherModeOFB:
		return "OFB"
	case CipherModeCFB8:
		return "CFB8"
	case CipherModeOFB8:
		return "OFB8"
	default:
		return fmt.Sprintf("CipherMode(%d)", int(cm))
	}
}

// ParseCipherMode maps a case-insensitive mode name to its CipherMode.
func ParseCipherMode(name string) (CipherMode, error) {
	for mode := CipherMode(0); mode < cipherModeCount; mode++ {
		if strings.EqualFold(name, mode.String()) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, name)
}

// RequiresIV reports whether the mode chains from an initialization vector.
func (cm CipherMode) RequiresIV() bool {
	return cm != CipherModeECB
}

// modeEngine is one chaining scheme. Engines only see whole buffers of equal
// length; padding is handled by the CipherContext.
type modeEngine interface {
	// padded reports whether the mode works on whole blocks and so needs padding.
	padded() bool
	encrypt(ctx context.Context, run modeRun, dst, src []uint8) error
	decrypt(ctx context.Context, run modeRun, dst, src []uint8) error
}

// modeRun is the per-call input of an engine. iv seeds the feedback register.
type modeRun struct {
	cipher   ISymmetricCipher
	iv       uint64
	parallel bool
}

func (cm CipherMode) engine() (modeEngine, error) {
	switch cm {
	case CipherModeECB:
		return ecbMode{}, nil
	case CipherModeCBC:
		return cbcMode{}, nil
	case CipherModeCFB:
		return cfbMode{}, nil
	case CipherModeOFB:
		return ofbMode{}, nil
	case CipherModeCFB8:
		return cfb8Mode{}, nil
	case CipherModeOFB8:
		return ofb8Mode{}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMode, cm)
	}
}

// cancelCheckInterval is how many units a mode loop processes between
// context checks.
const cancelCheckInterval = 4096

func checkCancelled(ctx context.Context, unit int) error {
	if unit%cancelCheckInterval != 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func loadBlock(b []uint8) uint64 { return binary.BigEndian.Uint64(b) }

func storeBlock(b []uint8, v uint64) { binary.BigEndian.PutUint64(b, v) }

// xorKeystream writes src xor the leading len(src) bytes of keystream into dst.
func xorKeystream(dst, src []uint8, keystream uint64) {
	var ks [BlockSize]uint8
	storeBlock(ks[:], keystream)
	for i := range src {
		dst[i] = src[i] ^ ks[i]
	}
}

// ECB

type ecbMode struct{}

func (ecbMode) padded() bool { return true }

func (m ecbMode) encrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	return m.process(ctx, run, dst, src, run.cipher.EncryptBlock)
}

func (m ecbMode) decrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	return m.process(ctx, run, dst, src, run.cipher.DecryptBlock)
}

func (ecbMode) process(ctx context.Context, run modeRun, dst, src []uint8, transform func(uint64) uint64) error {
	numBlocks := len(src) / BlockSize

	processRange := func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := checkCancelled(ctx, i-start); err != nil {
				return err
			}
			off := i * BlockSize
			storeBlock(dst[off:], transform(loadBlock(src[off:])))
		}
		return nil
	}

	numWorkers := runtime.NumCPU()
	if !run.parallel || numWorkers < 2 || numBlocks < 2 {
		return processRange(ctx, 0, numBlocks)
	}
	if numWorkers > numBlocks {
		numWorkers = numBlocks
	}

	// Blocks are independent, each worker owns a disjoint slice of dst.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	blocksPerWorker := (numBlocks + numWorkers - 1) / numWorkers
	for start := 0; start < numBlocks; start += blocksPerWorker {
		start := start // per-iteration copy (pre-Go 1.22 loop semantics)
		end := min(start+blocksPerWorker, numBlocks)
		g.Go(func() error {
			if err := processRange(gctx, start, end); err != nil {
				return fmt.Errorf("ECB blocks %d..%d: %w", start, end-1, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// CBC

type cbcMode struct{}

func (cbcMode) padded() bool { return true }

func (cbcMode) encrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	register := run.iv
	for i, off := 0, 0; off < len(src); i, off = i+1, off+BlockSize {
		if err := checkCancelled(ctx, i); err != nil {
			return err
		}
		register = run.cipher.EncryptBlock(loadBlock(src[off:]) ^ register)
		storeBlock(dst[off:], register)
	}
	return nil
}

func (cbcMode) decrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	register := run.iv
	for i, off := 0, 0; off < len(src); i, off = i+1, off+BlockSize {
		if err := checkCancelled(ctx, i); err != nil {
			return err
		}
		block := loadBlock(src[off:])
		storeBlock(dst[off:], run.cipher.DecryptBlock(block)^register)
		register = block
	}
	return nil
}

// CFB with 64-bit feedback. A short final block uses the leading keystream
// bytes, so the output is always as long as the input.

type cfbMode struct{}

func (cfbMode) padded() bool { return false }

func (cfbMode) encrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	register := run.iv
	for i, off := 0, 0; off < len(src); i, off = i+1, off+BlockSize {
		if err := checkCancelled(ctx, i); err != nil {
			return err
		}
		keystream := run.cipher.EncryptBlock(register)
		if len(src)-off < BlockSize {
			xorKeystream(dst[off:], src[off:], keystream)
			break
		}
		register = loadBlock(src[off:]) ^ keystream
		storeBlock(dst[off:], register)
	}
	return nil
}

func (cfbMode) decrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	register := run.iv
	for i, off := 0, 0; off < len(src); i, off = i+1, off+BlockSize {
		if err := checkCancelled(ctx, i); err != nil {
			return err
		}
		keystream := run.cipher.EncryptBlock(register)
		if len(src)-off < BlockSize {
			xorKeystream(dst[off:], src[off:], keystream)
			break
		}
		register = loadBlock(src[off:])
		storeBlock(dst[off:], register^keystream)
	}
	return nil
}

// OFB with 64-bit feedback; encryption and decryption are the same operation.

type ofbMode struct{}

func (ofbMode) padded() bool { return false }

func (ofbMode) encrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	register := run.iv
	for i, off := 0, 0; off < len(src); i, off = i+1, off+BlockSize {
		if err := checkCancelled(ctx, i); err != nil {
			return err
		}
		register = run.cipher.EncryptBlock(register)
		end := min(off+BlockSize, len(src))
		xorKeystream(dst[off:end], src[off:end], register)
	}
	return nil
}

func (m ofbMode) decrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	return m.encrypt(ctx, run, dst, src)
}

// CFB with 8-bit feedback. The register shifts left by one byte per unit and
// takes in the ciphertext byte.

type cfb8Mode struct{}

func (cfb8Mode) padded() bool { return false }

func (cfb8Mode) encrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	register := run.iv
	for i := range src {
		if err := checkCancelled(ctx, i); err != nil {
			return err
		}
		out := src[i] ^ uint8(run.cipher.EncryptBlock(register)>>56)
		dst[i] = out
		register = register<<8 | uint64(out)
	}
	return nil
}

func (cfb8Mode) decrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	register := run.iv
	for i := range src {
		if err := checkCancelled(ctx, i); err != nil {
			return err
		}
		in := src[i]
		dst[i] = in ^ uint8(run.cipher.EncryptBlock(register)>>56)
		register = register<<8 | uint64(in)
	}
	return nil
}

// OFB with 8-bit feedback. The register takes in the keystream byte, so the
// keystream never depends on the data.

type ofb8Mode struct{}

func (ofb8Mode) padded() bool { return false }

func (ofb8Mode) encrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	register := run.iv
	for i := range src {
		if err := checkCancelled(ctx, i); err != nil {
			return err
		}
		keystream := uint8(run.cipher.EncryptBlock(register) >> 56)
		dst[i] = src[i] ^ keystream
		register = register<<8 | uint64(keystream)
	}
	return nil
}

func (m ofb8Mode) decrypt(ctx context.Context, run modeRun, dst, src []uint8) error {
	return m.encrypt(ctx, run, dst, src)
}
