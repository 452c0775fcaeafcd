package secrets

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	magic      = "SMGRENC1"
	saltSize   = 16
	nonceSize  = 24
	keySize    = 32
	headerSize = len(magic) + 1 + saltSize + nonceSize

	minWorkFactor = 10
	maxWorkFactor = 22
)

// DefaultWorkFactor is log2 of the scrypt cost parameter N used unless
// SetWorkFactor is called.
const DefaultWorkFactor = 15

var workFactor uint8 = DefaultWorkFactor

// SetWorkFactor sets log2 of the scrypt cost used for new ciphertexts.
// Existing ciphertexts record their own cost and stay readable.
func SetWorkFactor(logN uint8) error {
	if logN < minWorkFactor || logN > maxWorkFactor {
		return fmt.Errorf("work factor must be between %d and %d, got %d", minWorkFactor, maxWorkFactor, logN)
	}
	workFactor = logN
	return nil
}

// WorkFactor returns the scrypt cost used for new ciphertexts.
func WorkFactor() uint8 {
	return workFactor
}

func deriveKey(passphrase, salt []byte, logN uint8) (*[keySize]byte, error) {
	derived, err := scrypt.Key(passphrase, salt, 1<<logN, 8, 1, keySize)
	if err != nil {
		return nil, err
	}
	var key [keySize]byte
	copy(key[:], derived)
	return &key, nil
}

// Encrypt seals plaintext with a key derived from passphrase.
//
// Layout: magic | log2(N) | salt | nonce | secretbox(plaintext).
func Encrypt(plaintext, passphrase []byte) ([]byte, error) {
	header := make([]byte, headerSize)
	copy(header, magic)
	header[len(magic)] = workFactor

	salt := header[len(magic)+1 : len(magic)+1+saltSize]
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, &kerrors.CryptoError{Op: "encrypt", Err: fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)}
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, &kerrors.CryptoError{Op: "encrypt", Err: fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)}
	}
	copy(header[len(magic)+1+saltSize:], nonce[:])

	key, err := deriveKey(passphrase, salt, workFactor)
	if err != nil {
		return nil, &kerrors.CryptoError{Op: "encrypt", Err: fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)}
	}

	return secretbox.Seal(header, plaintext, &nonce, key), nil
}

// Decrypt opens a ciphertext produced by Encrypt. A wrong passphrase and a
// corrupted ciphertext are reported identically as ErrDecryptFailed.
func Decrypt(ciphertext, passphrase []byte) ([]byte, error) {
	fail := func(reason string) error {
		return &kerrors.CryptoError{Op: "decrypt", Err: fmt.Errorf("%w: %s", kerrors.ErrDecryptFailed, reason)}
	}

	if len(ciphertext) < headerSize+secretbox.Overhead {
		return nil, fail("ciphertext is too short")
	}
	if !bytes.Equal(ciphertext[:len(magic)], []byte(magic)) {
		return nil, fail("unrecognized ciphertext format")
	}

	logN := ciphertext[len(magic)]
	if logN < minWorkFactor || logN > maxWorkFactor {
		return nil, fail("unsupported key derivation parameters")
	}

	salt := ciphertext[len(magic)+1 : len(magic)+1+saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[len(magic)+1+saltSize:headerSize])

	key, err := deriveKey(passphrase, salt, logN)
	if err != nil {
		return nil, fail(err.Error())
	}

	plaintext, ok := secretbox.Open(nil, ciphertext[headerSize:], &nonce, key)
	if !ok {
		return nil, fail("wrong passphrase or corrupted ciphertext")
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
