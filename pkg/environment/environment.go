// Package environment selects between the production and development
// partitions of every external collaborator: directory keys, registration
// tables, billing accounts and token encryption secrets.
package environment

import (
	"context"
	"net/http"
)

// DevHeader marks a request as targeting the development partition when it
// carries any non-empty value.
const DevHeader = "x-roamjs-dev"

// Environment identifies a storage and credential partition.
type Environment int

const (
	Production Environment = iota
	Development
)

func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Development:
		return "development"
	default:
		return "unknown"
	}
}

// IsDev reports whether e is the development partition.
func (e Environment) IsDev() bool {
	return e == Development
}

// FromHeader resolves the environment requested by r.
func FromHeader(r *http.Request) Environment {
	if r.Header.Get(DevHeader) != "" {
		return Development
	}
	return Production
}

type contextKey struct{}

// WithEnvironment returns a copy of ctx carrying env.
func WithEnvironment(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext returns the environment stored in ctx, defaulting to Production.
func FromContext(ctx context.Context) Environment {
	if env, ok := ctx.Value(contextKey{}).(Environment); ok {
		return env
	}
	return Production
}
