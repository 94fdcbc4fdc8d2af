package parts

import (
	"context"
	"fmt"

	"github.com/streamkit/streamkit/encryption"
	"github.com/streamkit/streamkit/stream"
)

// Encrypt returns a pipe that encrypts each string value with enc. Output
// values are base64-encoded ciphertexts.
func Encrypt(enc encryption.Encryptor) stream.Pipe {
	return &cipherPipe{op: "encrypt", apply: enc.Encrypt}
}

// Decrypt returns a pipe that decrypts each base64-encoded ciphertext
// produced by Encrypt with the same key.
func Decrypt(enc encryption.Encryptor) stream.Pipe {
	return &cipherPipe{op: "decrypt", apply: enc.Decrypt}
}

type cipherPipe struct {
	stateless
	op    string
	apply func(string) (string, error)
}

func (p *cipherPipe) TypeIn() stream.Type  { return stream.TypeOf[string]() }
func (p *cipherPipe) TypeOut() stream.Type { return stream.TypeOf[string]() }

func (p *cipherPipe) Transform(_ context.Context, _ stream.Env, src stream.Iterator) stream.Iterator {
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		v, ok, err := src.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		in, err := as[string](v)
		if err != nil {
			return nil, false, err
		}
		out, err := p.apply(in)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", p.op, err)
		}
		return out, true, nil
	})
}
