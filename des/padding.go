package des

import (
	"crypto/rand"
	"fmt"
	"strings"
)

type PaddingMode int

const (
	PaddingModePKCS7 PaddingMode = iota
	PaddingModeANSIX923
	PaddingModeISO10126
	PaddingModeNone
)

func (pm PaddingMode) String() string {
	switch pm {
	case PaddingModePKCS7:
		return "PKCS7"
	case PaddingModeANSIX923:
		return "ANSIX923"
	case PaddingModeISO10126:
		return "ISO10126"
	case PaddingModeNone:
		return "None"
	default:
		return fmt.Sprintf("PaddingMode(%d)", int(pm))
	}
}

// ParsePaddingMode accepts the names printed by String, case-insensitively,
// plus the short forms "ansi" and "iso".
func ParsePaddingMode(name string) (PaddingMode, error) {
	switch strings.ToLower(name) {
	case "pkcs7", "":
		return PaddingModePKCS7, nil
	case "ansix923", "ansi":
		return PaddingModeANSIX923, nil
	case "iso10126", "iso":
		return PaddingModeISO10126, nil
	case "none":
		return PaddingModeNone, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPadding, name)
	}
}

// applyPadding returns a new buffer padded to a whole number of blocks. Block
// aligned input still gets a full block of padding, except with
// PaddingModeNone which instead requires aligned input.
func applyPadding(data []uint8, mode PaddingMode) ([]uint8, error) {
	dataLength := len(data)

	if mode == PaddingModeNone {
		if dataLength == 0 || dataLength%BlockSize != 0 {
			return nil, fmt.Errorf("%w: got %d bytes", ErrUnalignedData, dataLength)
		}
		padded := make([]uint8, dataLength)
		copy(padded, data)
		return padded, nil
	}

	paddingLength := BlockSize - dataLength%BlockSize

	padded := make([]uint8, dataLength+paddingLength)
	copy(padded, data)

	switch mode {
	case PaddingModePKCS7:
		for i := dataLength; i < len(padded); i++ {
			padded[i] = uint8(paddingLength)
		}

	case PaddingModeANSIX923:
		padded[len(padded)-1] = uint8(paddingLength)

	case PaddingModeISO10126:
		if paddingLength > 1 {
			if _, err := rand.Read(padded[dataLength : len(padded)-1]); err != nil {
				return nil, fmt.Errorf("failed to generate random bytes: %w", err)
			}
		}
		padded[len(padded)-1] = uint8(paddingLength)

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPadding, mode)
	}

	return padded, nil
}

// removePadding validates and strips the padding added by applyPadding. On
// failure data is left untouched and ErrInvalidPadding is returned.
func removePadding(data []uint8, mode PaddingMode) ([]uint8, error) {
	if mode == PaddingModeNone {
		return data, nil
	}

	if len(data) == 0 || len(data)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidPadding, len(data))
	}

	paddingLength := int(data[len(data)-1])
	if paddingLength == 0 || paddingLength > BlockSize {
		return nil, fmt.Errorf("%w: declared length %d", ErrInvalidPadding, paddingLength)
	}

	start := len(data) - paddingLength

	switch mode {
	case PaddingModePKCS7:
		for i := start; i < len(data); i++ {
			if data[i] != uint8(paddingLength) {
				return nil, fmt.Errorf("%w: byte %d is 0x%02x, want 0x%02x",
					ErrInvalidPadding, i, data[i], paddingLength)
			}
		}

	case PaddingModeANSIX923:
		for i := start; i < len(data)-1; i++ {
			if data[i] != 0 {
				return nil, fmt.Errorf("%w: byte %d is 0x%02x, want 0x00",
					ErrInvalidPadding, i, data[i])
			}
		}

	case PaddingModeISO10126:
		// Filler bytes are random; only the declared length can be checked.

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPadding, mode)
	}

	return data[:start], nil
}
