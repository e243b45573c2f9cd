package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roamjs/gateway/pkg/environment"
)

// ErrNotFound is returned when an identity id is unknown to the directory
var ErrNotFound = errors.New("identity not found")

// EmailAddress is one address registered on an identity
type EmailAddress struct {
	ID      string `json:"id"`
	Address string `json:"email_address"`
}

// PrivateAttributes holds the server-only attributes of an identity
type PrivateAttributes struct {
	Token         string `json:"token,omitempty"`         // encrypted user token
	StripeID      string `json:"stripeId,omitempty"`      // billing customer id
	StripeAccount string `json:"stripeAccount,omitempty"` // billing connect account id
}

// Identity is a user as known to the directory
type Identity struct {
	ID                    string                     `json:"id"`
	EmailAddresses        []EmailAddress             `json:"email_addresses"`
	PrimaryEmailAddressID string                     `json:"primary_email_address_id,omitempty"`
	Private               PrivateAttributes          `json:"-"`
	Public                map[string]json.RawMessage `json:"public_metadata,omitempty"`
}

// PrimaryEmail returns the address designated as primary, or "" if none is
func (i *Identity) PrimaryEmail() string {
	for _, e := range i.EmailAddresses {
		if e.ID == i.PrimaryEmailAddressID {
			return e.Address
		}
	}
	return ""
}

// HasExtension reports whether the identity carries truthy public data for
// the given extension. Truthiness follows JavaScript: null, false, any zero
// number and the empty string are absent; objects and arrays are present.
func (i *Identity) HasExtension(extensionID string) bool {
	raw, ok := i.Public[FieldName(extensionID)]
	if !ok || len(raw) == 0 {
		return false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	}
	return true
}

// ExtensionData decodes the public data stored for an extension. A missing
// or non-object entry yields an empty map.
func (i *Identity) ExtensionData(extensionID string) (map[string]any, error) {
	data := map[string]any{}
	raw, ok := i.Public[FieldName(extensionID)]
	if !ok || len(raw) == 0 {
		return data, nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode %s data: %w", extensionID, err)
	}
	if obj, ok := decoded.(map[string]any); ok {
		return obj, nil
	}
	return data, nil
}

// FieldName converts a dash-separated extension id into the camelCase key
// used in public attributes: "query-builder" becomes "queryBuilder".
func FieldName(extensionID string) string {
	parts := strings.Split(extensionID, "-")
	var b strings.Builder
	for i, p := range parts {
		if i == 0 || p == "" {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// Directory looks up identities within an environment partition
type Directory interface {
	// FindByEmail returns every identity holding the address; zero matches is
	// not an error.
	FindByEmail(ctx context.Context, env environment.Environment, email string) ([]*Identity, error)
	// FindByID returns ErrNotFound when the id is unknown.
	FindByID(ctx context.Context, env environment.Environment, id string) (*Identity, error)
}
