package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// hexDigitsPerLine is how many hex digits writeHexFile puts on one line.
const hexDigitsPerLine = 32

// parseHex decodes hex text, skipping whitespace and any other non-hex
// characters such as separators.
func parseHex(text string) ([]uint8, error) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			return r
		default:
			return -1
		}
	}, text)

	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex digits (%d)", len(digits))
	}

	data, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return data, nil
}

func readHexFile(path string) ([]uint8, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data, err := parseHex(string(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return data, nil
}

func writeHexFile(path string, data []uint8) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	encoded := strings.ToUpper(hex.EncodeToString(data))
	for len(encoded) > 0 {
		n := min(hexDigitsPerLine, len(encoded))
		if _, err := w.WriteString(encoded[:n] + "\n"); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		encoded = encoded[n:]
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func readDataFile(path string, hexIO bool) ([]uint8, error) {
	if hexIO {
		return readHexFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeDataFile(path string, data []uint8, hexIO bool) error {
	if hexIO {
		return writeHexFile(path, data)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
