package auth

import (
	"context"
	"crypto/subtle"

	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/environment"
)

// Verifier checks presented credentials against the directory
type Verifier struct {
	directory directory.Directory
	keys      Keyring
}

// NewVerifier creates a verifier backed by dir, decrypting stored secrets
// with keys
func NewVerifier(dir directory.Directory, keys Keyring) *Verifier {
	return &Verifier{
		directory: dir,
		keys:      keys,
	}
}

// Verify returns the identity whose stored secret matches the presented
// credential within env. Any failure is a *VerificationFailure.
func (v *Verifier) Verify(ctx context.Context, header string, env environment.Environment) (*directory.Identity, error) {
	cred, err := ParseCredential(header)
	if err != nil {
		return nil, &VerificationFailure{Reason: FailureMalformedCredential, Err: err}
	}

	candidates, err := v.directory.FindByEmail(ctx, env, cred.Email)
	if err != nil {
		return nil, &VerificationFailure{Reason: FailureDirectory, Err: err}
	}
	if len(candidates) == 0 {
		return nil, &VerificationFailure{Reason: FailureNoCandidates}
	}

	c := v.keys.Cipher(env)
	failure := &VerificationFailure{Reason: FailureTokenMismatch, Candidates: len(candidates)}
	for _, candidate := range candidates {
		if candidate == nil || candidate.Private.Token == "" {
			continue
		}
		stored, err := c.Decrypt(candidate.Private.Token)
		if err != nil {
			// A candidate that cannot be decrypted simply does not match
			failure.Undecrypted++
			continue
		}
		if stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(cred.Token)) == 1 {
			return candidate, nil
		}
	}
	return nil, failure
}
