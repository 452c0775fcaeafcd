package secrets

import (
	"errors"

	"github.com/awnumar/memguard"
)

// Passphrase keeps the run's passphrase in a memguard enclave, encrypted
// in memory, and exposes it only for the duration of a callback.
type Passphrase struct {
	enclave *memguard.Enclave
}

// NewPassphrase moves b into an enclave. b is wiped.
func NewPassphrase(b []byte) (*Passphrase, error) {
	if len(b) == 0 {
		return nil, errors.New("passphrase must not be empty")
	}
	return &Passphrase{enclave: memguard.NewEnclave(b)}, nil
}

// Use calls fn with the plaintext passphrase. The buffer is destroyed when
// fn returns; fn must not retain it.
func (p *Passphrase) Use(fn func(passphrase []byte) error) error {
	buf, err := p.enclave.Open()
	if err != nil {
		return err
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

// Encrypt is Encrypt with the enclave passphrase.
func (p *Passphrase) Encrypt(plaintext []byte) ([]byte, error) {
	var out []byte
	err := p.Use(func(pw []byte) error {
		var err error
		out, err = Encrypt(plaintext, pw)
		return err
	})
	return out, err
}

// Decrypt is Decrypt with the enclave passphrase.
func (p *Passphrase) Decrypt(ciphertext []byte) ([]byte, error) {
	var out []byte
	err := p.Use(func(pw []byte) error {
		var err error
		out, err = Decrypt(ciphertext, pw)
		return err
	})
	return out, err
}
