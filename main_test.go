package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

const (
	testKeyHex = "133457799BBCDFF1"
	testIVHex  = "0123456789ABCDEF"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []uint8
		wantErr bool
	}{
		{"plain", "0123ab", []uint8{0x01, 0x23, 0xAB}, false},
		{"upper", "ABCDEF", []uint8{0xAB, 0xCD, 0xEF}, false},
		{"whitespace", " 01 23\n45\t67\r\n", []uint8{0x01, 0x23, 0x45, 0x67}, false},
		{"separators", "01:23-45", []uint8{0x01, 0x23, 0x45}, false},
		{"empty", "", []uint8{}, false},
		{"odd", "123", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHex(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("parseHex() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestHexFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	data := bytes.Repeat([]uint8{0xDE, 0xAD, 0xBE, 0xEF}, 10)

	if err := writeHexFile(path, data); err != nil {
		t.Fatal(err)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(text), "\n"), "\n")
	if len(lines) != 3 || len(lines[0]) != hexDigitsPerLine || lines[0] != strings.ToUpper(lines[0]) {
		t.Errorf("unexpected layout:\n%s", text)
	}

	back, err := readHexFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, data) {
		t.Errorf("readHexFile() = %x, want %x", back, data)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRunKnownAnswer(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "plain.txt", testIVHex+"\n")
	output := filepath.Join(dir, "cipher.txt")

	if _, err := runCLI(t, "-e", "-m=ecb", "-pad=none", "-k="+testKeyHex, input, output); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != "85E813540F0AB405" {
		t.Errorf("ciphertext = %q, want 85E813540F0AB405", got)
	}
}

func TestRunRoundTripAllModes(t *testing.T) {
	for _, mode := range []string{"ecb", "cbc", "cfb", "ofb", "cfb8", "ofb8"} {
		for _, hexIO := range []bool{true, false} {
			name := mode
			if !hexIO {
				name += "/binary"
			}
			t.Run(name, func(t *testing.T) {
				dir := t.TempDir()
				plain := []byte("The quick brown fox jumps over the lazy dog")

				input := filepath.Join(dir, "in")
				content := string(plain)
				if hexIO {
					content = strings.ToUpper(hex.EncodeToString(plain))
				}
				writeFile(t, dir, "in", content)

				enc := filepath.Join(dir, "enc")
				dec := filepath.Join(dir, "dec")
				flags := []string{"-m=" + mode, "-k=" + testKeyHex, "-iv=" + testIVHex}
				if !hexIO {
					flags = append(flags, "-hex=false")
				}

				if _, err := runCLI(t, append(append([]string{"-e"}, flags...), input, enc)...); err != nil {
					t.Fatalf("encrypt: %v", err)
				}
				if _, err := runCLI(t, append(append([]string{"-d"}, flags...), enc, dec)...); err != nil {
					t.Fatalf("decrypt: %v", err)
				}

				var got []uint8
				var err error
				if hexIO {
					got, err = readHexFile(dec)
				} else {
					got, err = os.ReadFile(dec)
				}
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(got, plain) {
					t.Errorf("round trip = %q, want %q", got, plain)
				}
			})
		}
	}
}

func TestRunKeyAndIVFromFilesAndEnv(t *testing.T) {
	dir := t.TempDir()
	keyFile := writeFile(t, dir, "key.txt", "1334 5779 9BBC DFF1\n")
	input := writeFile(t, dir, "plain.txt", "00112233445566778899")
	enc := filepath.Join(dir, "enc.txt")
	dec := filepath.Join(dir, "dec.txt")

	t.Setenv(ivEnv, testIVHex)

	if _, err := runCLI(t, "-e", "-m=cfb8", "-kf="+keyFile, input, enc); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := runCLI(t, "-d", "-m=cfb8", "-k="+testKeyHex, "-iv="+testIVHex, enc, dec); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	got, err := readHexFile(dec)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := parseHex("00112233445566778899")
	if !bytes.Equal(got, want) {
		t.Errorf("round trip = %x, want %x", got, want)
	}
}

func TestRunGeneratesMissingKeyMaterial(t *testing.T) {
	t.Setenv(keyEnv, "")
	t.Setenv(ivEnv, "")

	dir := t.TempDir()
	input := writeFile(t, dir, "plain.txt", "0011")
	output := filepath.Join(dir, "cipher.txt")

	stdout, err := runCLI(t, "-e", "-m=ofb", input, output)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !regexp.MustCompile(`Generated key: [0-9A-F]{16}`).MatchString(stdout) {
		t.Errorf("no generated key in output:\n%s", stdout)
	}
	if !regexp.MustCompile(`Generated IV: [0-9A-F]{16}`).MatchString(stdout) {
		t.Errorf("no generated IV in output:\n%s", stdout)
	}
}

func TestRunGen(t *testing.T) {
	stdout, err := runCLI(t, "-gen")
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`(?m)^key: [0-9A-F]{16}\niv:  [0-9A-F]{16}$`).MatchString(stdout) {
		t.Errorf("unexpected -gen output:\n%s", stdout)
	}
}

func TestRunUsageErrors(t *testing.T) {
	t.Setenv(keyEnv, "")
	t.Setenv(ivEnv, "")

	dir := t.TempDir()
	input := writeFile(t, dir, "in.txt", "0011223344556677")
	output := filepath.Join(dir, "out.txt")

	tests := []struct {
		name string
		args []string
	}{
		{"noDirection", []string{"-k=" + testKeyHex, input, output}},
		{"bothDirections", []string{"-e", "-d", "-k=" + testKeyHex, input, output}},
		{"missingFiles", []string{"-e", "-k=" + testKeyHex, input}},
		{"badMode", []string{"-e", "-m=ctr", "-k=" + testKeyHex, input, output}},
		{"badPadding", []string{"-e", "-pad=zeros", "-k=" + testKeyHex, input, output}},
		{"shortKey", []string{"-e", "-k=1234", input, output}},
		{"oddKey", []string{"-e", "-k=123", input, output}},
		{"decryptWithoutKey", []string{"-d", "-m=ecb", input, output}},
		{"decryptWithoutIV", []string{"-d", "-m=cbc", "-k=" + testKeyHex, input, output}},
		{"unknownFlag", []string{"-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errors.Is(err, errUsage) {
				t.Errorf("run() error = %v, want usage error", err)
			}
		})
	}
}

func TestRunReportsBadPadding(t *testing.T) {
	dir := t.TempDir()
	// One block that does not decrypt to valid PKCS#7 padding under this key.
	input := writeFile(t, dir, "cipher.txt", "85E813540F0AB405")
	output := filepath.Join(dir, "plain.txt")

	_, err := runCLI(t, "-d", "-m=ecb", "-k="+testKeyHex, input, output)
	if err == nil {
		t.Fatal("run() accepted ciphertext with invalid padding")
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("output file written despite the error")
	}
}
