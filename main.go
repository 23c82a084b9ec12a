package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/nPaBwaYT/e1des/des"
)

/*
Encrypt a hex text file with DES in CBC mode
go run . -e -m=cbc -k=133457799BBCDFF1 -iv=0123456789ABCDEF plain.txt cipher.txt

Decrypt it again
go run . -d -m=cbc -k=133457799BBCDFF1 -iv=0123456789ABCDEF cipher.txt plain.txt

Key and IV from hex files, 8-bit CFB
go run . -e -m=cfb8 -kf=key.txt -vf=iv.txt plain.txt cipher.txt

Raw binary files, parallel ECB
go run . -e -m=ecb -hex=false -parallel -k=133457799BBCDFF1 photo.jpg photo.enc

Print a fresh random key and IV
go run . -gen

Modes: ECB, CBC, CFB, OFB, CFB8, OFB8
Padding (ECB/CBC only): pkcs7, ansix923, iso10126, none
*/

const (
	keyEnv = "E1DES_KEY"
	ivEnv  = "E1DES_IV"
)

type options struct {
	encrypt  bool
	decrypt  bool
	generate bool
	mode     des.CipherMode
	padding  des.PaddingMode
	parallel bool
	hexIO    bool
	key      []uint8
	iv       []uint8
	input    string
	output   string
}

var errUsage = errors.New("usage error")

func main() {
	log.SetFlags(0)
	log.SetPrefix("e1des: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			stop()
			log.Print(err)
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}

	if opts.generate {
		return generateKeyMaterial(stdout)
	}

	if opts.key == nil {
		if opts.decrypt {
			return fmt.Errorf("%w: decryption needs a key (-k, -kf or %s)", errUsage, keyEnv)
		}
		opts.key, err = randomBytes(des.BlockSize)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		fmt.Fprintf(stdout, "Generated key: %X\n", opts.key)
	}

	if opts.iv == nil && opts.mode.RequiresIV() {
		if opts.decrypt {
			return fmt.Errorf("%w: %v mode needs an IV (-iv, -vf or %s)", errUsage, opts.mode, ivEnv)
		}
		opts.iv, err = randomBytes(des.BlockSize)
		if err != nil {
			return fmt.Errorf("failed to generate IV: %w", err)
		}
		fmt.Fprintf(stdout, "Generated IV: %X\n", opts.iv)
	}

	cipher, err := des.NewDESCipher(opts.key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	cc, err := des.NewCipherContext(cipher, opts.iv, opts.padding, opts.parallel)
	if err != nil {
		return fmt.Errorf("failed to create cipher context: %w", err)
	}

	input, err := readDataFile(opts.input, opts.hexIO)
	if err != nil {
		return err
	}

	startTime := time.Now()

	var output []uint8
	if opts.encrypt {
		output, err = cc.Encrypt(ctx, input, opts.mode)
	} else {
		output, err = cc.Decrypt(ctx, input, opts.mode)
	}
	if err != nil {
		return err
	}

	if err := writeDataFile(opts.output, output, opts.hexIO); err != nil {
		return err
	}

	duration := time.Since(startTime)

	if opts.encrypt {
		fmt.Fprintf(stdout, "Encryption complete, ciphertext written to: %s\n", opts.output)
	} else {
		fmt.Fprintf(stdout, "Decryption complete, plaintext written to: %s\n", opts.output)
	}
	fmt.Fprintf(stdout, "  Mode: %v\n", opts.mode)
	if opts.mode == des.CipherModeECB || opts.mode == des.CipherModeCBC {
		fmt.Fprintf(stdout, "  Padding: %v\n", opts.padding)
	}
	fmt.Fprintf(stdout, "  Bytes: %d -> %d\n", len(input), len(output))
	fmt.Fprintf(stdout, "  Time: %v\n", duration)

	return nil
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("e1des", flag.ContinueOnError)
	fs.SetOutput(stderr)

	encryptFlag := fs.Bool("e", false, "encrypt")
	decryptFlag := fs.Bool("d", false, "decrypt")
	generateFlag := fs.Bool("gen", false, "print a random key and IV and exit")
	modeFlag := fs.String("m", "cbc", "mode: ecb, cbc, cfb, ofb, cfb8, ofb8")
	paddingFlag := fs.String("pad", "pkcs7", "padding for ECB/CBC: pkcs7, ansix923, iso10126, none")
	parallelFlag := fs.Bool("parallel", false, "spread ECB blocks over all CPUs")
	hexFlag := fs.Bool("hex", true, "read and write hex text instead of raw bytes")
	keyFlag := fs.String("k", "", "key as 16 hex digits (default $"+keyEnv+")")
	keyFileFlag := fs.String("kf", "", "file holding the key as hex text")
	ivFlag := fs.String("iv", "", "IV as 16 hex digits (default $"+ivEnv+")")
	ivFileFlag := fs.String("vf", "", "file holding the IV as hex text")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  e1des -e [flags] input output")
		fmt.Fprintln(stderr, "  e1des -d [flags] input output")
		fmt.Fprintln(stderr, "  e1des -gen")
		fmt.Fprintln(stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	opts := &options{
		encrypt:  *encryptFlag,
		decrypt:  *decryptFlag,
		generate: *generateFlag,
		parallel: *parallelFlag,
		hexIO:    *hexFlag,
	}
	if opts.generate {
		return opts, nil
	}

	if opts.encrypt == opts.decrypt {
		fs.Usage()
		return nil, fmt.Errorf("%w: exactly one of -e and -d is required", errUsage)
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return nil, fmt.Errorf("%w: input and output files are required", errUsage)
	}
	opts.input, opts.output = fs.Arg(0), fs.Arg(1)

	var err error
	if opts.mode, err = des.ParseCipherMode(*modeFlag); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if opts.padding, err = des.ParsePaddingMode(*paddingFlag); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	if opts.key, err = loadHexValue("key", *keyFlag, *keyFileFlag, keyEnv); err != nil {
		return nil, err
	}
	if opts.iv, err = loadHexValue("IV", *ivFlag, *ivFileFlag, ivEnv); err != nil {
		return nil, err
	}

	return opts, nil
}

// loadHexValue resolves an 8-byte value from the inline flag, then the file
// flag, then the environment. It returns nil when none is set.
func loadHexValue(name, inline, path, env string) ([]uint8, error) {
	var (
		value []uint8
		err   error
	)

	switch {
	case inline != "":
		value, err = parseHex(inline)
	case path != "":
		value, err = readHexFile(path)
	case os.Getenv(env) != "":
		value, err = parseHex(os.Getenv(env))
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", errUsage, name, err)
	}

	if len(value) != des.BlockSize {
		return nil, fmt.Errorf("%w: %s must be 16 hexadecimal characters (64 bits), got %d",
			errUsage, name, 2*len(value))
	}
	return value, nil
}

func generateKeyMaterial(stdout io.Writer) error {
	key, err := randomBytes(des.BlockSize)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	iv, err := randomBytes(des.BlockSize)
	if err != nil {
		return fmt.Errorf("failed to generate IV: %w", err)
	}

	fmt.Fprintf(stdout, "key: %X\n", key)
	fmt.Fprintf(stdout, "iv:  %X\n", iv)
	return nil
}

func randomBytes(n int) ([]uint8, error) {
	b := make([]uint8, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
