package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/roamjs/gateway/pkg/auth"
)

func newProvisionCommand(out io.Writer, environ map[string]string) *Command {
	cmd := &Command{
		Name:        "provision",
		Description: "Generate a user token and its stored form",
		Flags:       flag.NewFlagSet("provision", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(out)

	email := cmd.Flags.String("email", "", "Email address of the user")
	dev := cmd.Flags.Bool("dev", false, "Provision for the development environment")
	secret := cmd.Flags.String("secret", "", "Encryption passphrase (defaults to ENCRYPTION_SECRET[_DEV])")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *email == "" {
			return errors.New("--email is required")
		}

		c, err := cipherFor(environ, *dev, *secret)
		if err != nil {
			return err
		}

		provisioned, err := auth.NewTokenGenerator().Provision(*email, c)
		if err != nil {
			return fmt.Errorf("failed to provision token: %w", err)
		}

		fmt.Fprintf(out, "Stored token (private \"token\" attribute):\n  %s\n\n", provisioned.Ciphertext)
		fmt.Fprintf(out, "Credential for %s (shown once):\n  %s\n", *email, provisioned.Credential.Header())
		return nil
	}

	return cmd
}
