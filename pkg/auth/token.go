package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenLength is the number of random bytes in a user token (256 bits)
const TokenLength = 32

// TokenGenerator generates user tokens
type TokenGenerator struct{}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// GenerateToken creates a new random token
// Format: base64url(32 random bytes), no padding
func (tg *TokenGenerator) GenerateToken() (string, error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// Provisioned is the result of provisioning a user token
type Provisioned struct {
	// Ciphertext is stored in the directory's private "token" attribute
	Ciphertext string
	// Credential is handed to the user ONCE; the plaintext token is never stored
	Credential Credential
}

// Provision generates a token for email and encrypts it with c
func (tg *TokenGenerator) Provision(email string, c *Cipher) (*Provisioned, error) {
	token, err := tg.GenerateToken()
	if err != nil {
		return nil, err
	}
	ciphertext, err := c.Encrypt(token)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt token: %w", err)
	}
	return &Provisioned{
		Ciphertext: ciphertext,
		Credential: Credential{Email: email, Token: token},
	}, nil
}
