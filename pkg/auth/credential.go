package auth

import (
	"encoding/base64"
	"errors"
	"strings"
)

// BearerPrefix precedes the encoded credential in the Authorization header
const BearerPrefix = "Bearer "

// ErrMalformedCredential is returned when a presented credential cannot be
// decoded into an email and a token
var ErrMalformedCredential = errors.New("malformed credential")

// Credential is the decoded form of a presented bearer credential
type Credential struct {
	Email string
	Token string
}

// ParseCredential decodes "Bearer base64(email:token)". The Bearer prefix is
// optional. The token is everything after the first colon.
func ParseCredential(header string) (Credential, error) {
	encoded := strings.TrimPrefix(header, BearerPrefix)
	if encoded == "" {
		return Credential{}, ErrMalformedCredential
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return Credential{}, ErrMalformedCredential
		}
	}

	email, token, ok := strings.Cut(string(decoded), ":")
	if !ok || email == "" {
		return Credential{}, ErrMalformedCredential
	}
	return Credential{Email: email, Token: token}, nil
}

// Header encodes the credential for the Authorization header
func (c Credential) Header() string {
	return BearerPrefix + base64.StdEncoding.EncodeToString([]byte(c.Email+":"+c.Token))
}
