// Package encryption seals string values with an authenticated cipher so
// they can cross untrusted transports inside a pipeline.
//
// Keys are derived from a passphrase with SHA-256, and each sealed value
// carries its own random nonce. AES-256-GCM is the default; select
// ChaCha20-Poly1305 with WithAlgorithm for hosts without AES hardware.
//
//	enc, err := encryption.New("my-secret-passphrase")
//	sealed, err := enc.Encrypt("hello")
//	plain, err := enc.Decrypt(sealed)
package encryption
