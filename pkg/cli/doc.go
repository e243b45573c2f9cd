// Package cli implements the roamjs-token command used by operators to
// provision user tokens.
//
// # Commands
//
// provision: generate a token, print the ciphertext to store in the
// directory and the credential to hand to the user
//
//	roamjs-token provision --email ada@example.com [--dev]
//
// check: confirm a presented credential matches a stored ciphertext
//
//	roamjs-token check --credential "Bearer ..." --stored "U2FsdGVk..."
//
// The passphrase comes from ENCRYPTION_SECRET (or ENCRYPTION_SECRET_DEV
// with --dev) unless --secret is given.
package cli
