package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm selects the AEAD construction used by New.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM, the default.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
	// AlgorithmChaCha20 is ChaCha20-Poly1305, which stays fast on CPUs
	// without AES hardware support.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

// Encryptor encrypts and decrypts strings for transport through a pipeline.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Option configures New.
type Option func(*options)

type options struct {
	algorithm Algorithm
}

// WithAlgorithm selects the AEAD construction. The default is AES-256-GCM.
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// New derives a 256-bit key from the passphrase and returns an Encryptor for
// the chosen algorithm. Two Encryptors built from the same passphrase and
// algorithm can decrypt each other's output.
func New(passphrase string, opts ...Option) (Encryptor, error) {
	o := options{algorithm: AlgorithmAESGCM}
	for _, opt := range opts {
		opt(&o)
	}

	key := deriveKey(passphrase)
	var (
		aead cipher.AEAD
		err  error
	)
	switch o.algorithm {
	case AlgorithmAESGCM:
		aead, err = newGCM(key)
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("unknown encryption algorithm %q", o.algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", o.algorithm, err)
	}
	return &aeadEncryptor{aead: aead}, nil
}

// deriveKey stretches a passphrase into a 32-byte key, the size both
// supported AEADs require.
func deriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// aeadEncryptor implements Encryptor over any AEAD. The random nonce is
// prepended to the sealed bytes and the whole blob is base64-encoded so it
// survives text transports.
type aeadEncryptor struct {
	aead cipher.AEAD
}

func (e *aeadEncryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *aeadEncryptor) Decrypt(ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	n := e.aead.NonceSize()
	if len(blob) < n {
		return "", fmt.Errorf("ciphertext too short")
	}
	plain, err := e.aead.Open(nil, blob[:n], blob[n:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}
