// Package auth verifies caller credentials against secrets held by the
// identity directory.
//
// # Overview
//
// Users never present a password to this service. Instead, each user is
// provisioned once with a random token; the directory keeps only the token's
// encrypted form in the user's private attributes, and the user presents
//
//	Authorization: Bearer base64(email:token)
//
// on every request. Verification decrypts the stored secret of every identity
// registered under the presented email and compares it to the presented token.
//
// # Encryption
//
// Stored secrets use the OpenSSL passphrase format produced by CryptoJS:
//
//	base64("Salted__" || salt[8] || AES-256-CBC(PKCS#7(token)))
//
// with key and IV derived from the passphrase and salt via EVP_BytesToKey
// (MD5, one round). Production and development identities are encrypted with
// different passphrases; a Keyring selects the one matching the partition the
// identity was looked up in. A mismatched passphrase never verifies.
//
// # Verification
//
//	verifier := auth.NewVerifier(dir, auth.Keyring{Production: prodSecret, Development: devSecret})
//	identity, err := verifier.Verify(ctx, r.Header.Get("Authorization"), environment.Production)
//	if err != nil {
//		var failure *auth.VerificationFailure
//		errors.As(err, &failure) // failure.Reason is for logs only
//		return unauthenticated
//	}
//
// Every failure, including malformed credentials and directory outages, is a
// *VerificationFailure. Callers respond with a uniform 401 and log the reason.
//
// # Provisioning
//
// Provision generates a fresh token and returns the ciphertext to store in the
// directory together with the credential to hand to the user.
//
// # Related Packages
//
//   - pkg/directory: identity lookup
//   - pkg/middleware: developer and end-user guards built on Verifier
package auth
