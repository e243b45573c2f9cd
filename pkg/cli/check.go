package cli

import (
	"crypto/subtle"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/roamjs/gateway/pkg/auth"
)

// ErrMismatch is returned when a credential does not match a stored token
var ErrMismatch = errors.New("credential does not match the stored token")

func newCheckCommand(out io.Writer, environ map[string]string) *Command {
	cmd := &Command{
		Name:        "check",
		Description: "Check a credential against a stored token",
		Flags:       flag.NewFlagSet("check", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(out)

	credential := cmd.Flags.String("credential", "", "Credential as presented by the client")
	stored := cmd.Flags.String("stored", "", "Stored token ciphertext")
	dev := cmd.Flags.Bool("dev", false, "Use the development secret")
	secret := cmd.Flags.String("secret", "", "Encryption passphrase (defaults to ENCRYPTION_SECRET[_DEV])")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *credential == "" || *stored == "" {
			return errors.New("--credential and --stored are required")
		}

		cred, err := auth.ParseCredential(*credential)
		if err != nil {
			return err
		}
		c, err := cipherFor(environ, *dev, *secret)
		if err != nil {
			return err
		}
		plain, err := c.Decrypt(*stored)
		if err != nil {
			return fmt.Errorf("failed to decrypt stored token: %w", err)
		}
		if plain == "" || subtle.ConstantTimeCompare([]byte(plain), []byte(cred.Token)) != 1 {
			return ErrMismatch
		}

		fmt.Fprintf(out, "Credential for %s matches the stored token\n", cred.Email)
		return nil
	}

	return cmd
}
