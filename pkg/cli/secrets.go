package cli

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/roamjs/gateway/pkg/auth"
	"github.com/roamjs/gateway/pkg/environment"
)

// secrets holds the encryption passphrases read from the environment
type secrets struct {
	Production  string `env:"ENCRYPTION_SECRET"`
	Development string `env:"ENCRYPTION_SECRET_DEV"`
}

// cipherFor resolves the cipher of an environment. An explicit secret wins
// over the environment variables.
func cipherFor(environ map[string]string, dev bool, explicit string) (*auth.Cipher, error) {
	if explicit != "" {
		return auth.NewCipher(explicit), nil
	}

	var s secrets
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	keys := auth.Keyring{Production: s.Production, Development: s.Development}

	target := environment.Production
	passphrase := keys.Production
	if dev {
		target = environment.Development
		passphrase = keys.Development
	}
	if passphrase == "" {
		return nil, errors.New("no encryption secret for " + target.String() + ": pass --secret or set the environment variable")
	}
	return keys.Cipher(target), nil
}
