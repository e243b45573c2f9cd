// Package registry reads extension registrations from the key-value store.
//
// A registration records which identity owns an extension and which billing
// price the extension is sold under. Registrations are provisioned elsewhere;
// this package only reads them.
package registry

import (
	"context"
	"errors"

	"github.com/roamjs/gateway/pkg/environment"
)

// ErrNotFound is returned when no registration exists for an extension id
var ErrNotFound = errors.New("extension not found")

// Registration describes one registered extension
type Registration struct {
	ID      string `dynamodbav:"id"`
	OwnerID string `dynamodbav:"user"`
	PriceID string `dynamodbav:"premium"`
}

// Store looks up registrations within an environment partition
type Store interface {
	Get(ctx context.Context, env environment.Environment, extensionID string) (*Registration, error)
	ListByOwner(ctx context.Context, env environment.Environment, ownerID string) ([]string, error)
}

// Tables maps each environment to its registration table
type Tables struct {
	Production  string
	Development string
	OwnerIndex  string
}

// DefaultTables returns the table names used by the hosted deployment
func DefaultTables() Tables {
	return Tables{
		Production:  "RoamJSExtensions",
		Development: "RoamJSExtensionsDev",
		OwnerIndex:  "user-index",
	}
}

// Name returns the table backing env
func (t Tables) Name(env environment.Environment) string {
	if env.IsDev() {
		return t.Development
	}
	return t.Production
}
