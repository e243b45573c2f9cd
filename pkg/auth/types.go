package auth

import (
	"fmt"
	"slices"

	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/environment"
)

// FailureReason classifies why a credential did not verify
type FailureReason string

const (
	FailureMalformedCredential FailureReason = "malformed_credential"
	FailureDirectory           FailureReason = "directory_error"
	FailureNoCandidates        FailureReason = "no_candidates"
	FailureTokenMismatch       FailureReason = "token_mismatch"
)

// VerificationFailure is returned by Verifier.Verify for every unsuccessful
// verification. It is for logging only and must not be written to responses.
type VerificationFailure struct {
	Reason      FailureReason
	Candidates  int // identities found for the presented email
	Undecrypted int // candidates whose stored secret failed to decrypt
	Err         error
}

func (f *VerificationFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("verification failed (%s): %v", f.Reason, f.Err)
	}
	return fmt.Sprintf("verification failed (%s)", f.Reason)
}

func (f *VerificationFailure) Unwrap() error {
	return f.Err
}

// AuthContext holds an authenticated identity for the rest of the request
type AuthContext struct {
	Identity    *directory.Identity
	Environment environment.Environment
	// Extensions lists the extension ids owned by the identity; only
	// populated for developers.
	Extensions []string
}

// Owns reports whether the identity owns the extension
func (ac *AuthContext) Owns(extensionID string) bool {
	return slices.Contains(ac.Extensions, extensionID)
}
