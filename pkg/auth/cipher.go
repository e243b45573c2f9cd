package auth

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	openssl "github.com/Luzifer/go-openssl/v4"

	"github.com/roamjs/gateway/pkg/environment"
)

const (
	saltHeader = "Salted__"
	saltLength = 8
)

var (
	// ErrNoPassphrase is returned when a Cipher has no passphrase configured
	ErrNoPassphrase = errors.New("encryption passphrase not configured")
	// ErrMalformedCiphertext is returned for ciphertexts not in salted OpenSSL format
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	// ErrDecrypt is returned when padding or encoding checks fail after decryption,
	// which is what a wrong passphrase produces
	ErrDecrypt = errors.New("decryption failed")
)

// Cipher encrypts and decrypts secrets with a passphrase, compatible with
// CryptoJS.AES.encrypt(message, passphrase) and
// `openssl enc -aes-256-cbc -md md5`
type Cipher struct {
	passphrase string
	ossl       *openssl.OpenSSL
}

// NewCipher creates a cipher for the given passphrase
func NewCipher(passphrase string) *Cipher {
	return &Cipher{passphrase: passphrase, ossl: openssl.New()}
}

// Encrypt returns the base64 salted ciphertext of plaintext
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c.passphrase == "" {
		return "", ErrNoPassphrase
	}
	out, err := c.ossl.EncryptBytes(c.passphrase, []byte(plaintext), openssl.BytesToKeyMD5)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	return string(out), nil
}

// Decrypt recovers the plaintext of a base64 salted ciphertext
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if c.passphrase == "" {
		return "", ErrNoPassphrase
	}
	if err := checkFormat(ciphertext); err != nil {
		return "", err
	}

	plaintext, err := c.ossl.DecryptBytes(c.passphrase, []byte(ciphertext), openssl.BytesToKeyMD5)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if !utf8.Valid(plaintext) {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// checkFormat rejects input that is not "Salted__" || salt || whole AES blocks
func checkFormat(ciphertext string) error {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	headerLen := len(saltHeader) + saltLength
	if len(raw) <= headerLen || !bytes.HasPrefix(raw, []byte(saltHeader)) {
		return ErrMalformedCiphertext
	}
	if (len(raw)-headerLen)%aes.BlockSize != 0 {
		return ErrMalformedCiphertext
	}
	return nil
}

// Keyring holds the token encryption passphrase of each environment
type Keyring struct {
	Production  string
	Development string
}

// Cipher returns the cipher for env
func (k Keyring) Cipher(env environment.Environment) *Cipher {
	if env.IsDev() {
		return NewCipher(k.Development)
	}
	return NewCipher(k.Production)
}
