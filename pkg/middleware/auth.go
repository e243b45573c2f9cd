package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roamjs/gateway/pkg/auth"
	"github.com/roamjs/gateway/pkg/contextkeys"
	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/environment"
	"github.com/roamjs/gateway/pkg/httputil"
	"github.com/roamjs/gateway/pkg/observability"
	"github.com/roamjs/gateway/pkg/registry"
)

const (
	// ExtensionHeader names the extension a request targets
	ExtensionHeader = "x-roamjs-extension"
	// ServiceHeader is the legacy name of ExtensionHeader
	ServiceHeader = "x-roamjs-service"
	// UserTokenHeader carries the end user's credential on developer requests
	UserTokenHeader = "x-roamjs-token"
	// AuthorizationHeader carries the caller's own credential
	AuthorizationHeader = "Authorization"
)

const (
	InvalidDeveloperMessage = "Invalid developer token"
	InvalidUserMessage      = "Invalid user token. Please make sure you've added your token from https://roamjs.com/user/#Extensions to Roam by entering `Set RoamJS Token` in the command palette. Also make sure that you are logged in to Roam with the same email that is registered with RoamJS."
)

const (
	guardDeveloper = "developer"
	guardUser      = "user"
)

// Verifier checks a presented credential within an environment
type Verifier interface {
	Verify(ctx context.Context, header string, env environment.Environment) (*directory.Identity, error)
}

// TargetExtension returns the extension id a request targets, or "" when
// it targets none
func TargetExtension(r *http.Request) string {
	if ext := r.Header.Get(ExtensionHeader); ext != "" {
		return ext
	}
	return r.Header.Get(ServiceHeader)
}

// Instruments groups the optional metric sinks of the guards
type Instruments struct {
	Metrics *observability.Metrics
	OTel    *observability.OTelMetrics
}

func (in Instruments) record(ctx context.Context, guard string, env environment.Environment, outcome string, start time.Time) {
	if in.Metrics != nil {
		in.Metrics.AuthenticationsTotal.WithLabelValues(guard, env.String(), outcome).Inc()
	}
	in.OTel.RecordVerification(ctx, guard, outcome, time.Since(start))
}

// failureOutcome labels a verification failure for metrics
func failureOutcome(err error) string {
	var failure *auth.VerificationFailure
	if errors.As(err, &failure) {
		return string(failure.Reason)
	}
	return "error"
}

// DeveloperGuard admits requests from extension developers acting on
// extensions they own
type DeveloperGuard struct {
	verifier    Verifier
	store       registry.Store
	logger      *logrus.Logger
	instruments Instruments
}

// NewDeveloperGuard creates a developer guard
func NewDeveloperGuard(verifier Verifier, store registry.Store, logger *logrus.Logger, instruments Instruments) *DeveloperGuard {
	return &DeveloperGuard{
		verifier:    verifier,
		store:       store,
		logger:      logger,
		instruments: instruments,
	}
}

// Wrap authenticates the developer against the production directory and
// checks ownership of the targeted extension before running next
func (g *DeveloperGuard) Wrap(next httputil.Handler) httputil.Handler {
	return func(r *http.Request) (*httputil.Result, error) {
		ctx := r.Context()
		start := time.Now()
		log := observability.FromContext(ctx, g.logger).WithField("guard", guardDeveloper)

		// Developers are always production identities.
		identity, err := g.verifier.Verify(ctx, r.Header.Get(AuthorizationHeader), environment.Production)
		if err != nil {
			outcome := failureOutcome(err)
			g.instruments.record(ctx, guardDeveloper, environment.Production, outcome, start)
			log.WithError(err).WithField("reason", outcome).Warn("Developer verification failed")
			return httputil.Text(http.StatusUnauthorized, InvalidDeveloperMessage), nil
		}

		owned, err := g.store.ListByOwner(ctx, environment.Production, identity.ID)
		if err != nil {
			g.instruments.record(ctx, guardDeveloper, environment.Production, "registry_error", start)
			log.WithError(err).WithField("developer", identity.ID).Error("Failed to list developer extensions")
			return nil, fmt.Errorf("failed to list extensions for developer: %w", err)
		}

		authCtx := &auth.AuthContext{
			Identity:    identity,
			Environment: environment.Production,
			Extensions:  owned,
		}
		if ext := TargetExtension(r); ext != "" && !authCtx.Owns(ext) {
			g.instruments.record(ctx, guardDeveloper, environment.Production, "forbidden", start)
			log.WithFields(logrus.Fields{"developer": identity.ID, "extension": ext}).Warn("Developer does not own extension")
			return httputil.Text(http.StatusForbidden, fmt.Sprintf("Developer does not have access to data for extension %s", ext)), nil
		}

		g.instruments.record(ctx, guardDeveloper, environment.Production, "success", start)
		res, err := next(r.WithContext(contextkeys.WithDeveloper(ctx, authCtx)))
		if err != nil {
			log.WithError(err).Error("Handler failed")
		}
		return httputil.Complete(res, err), nil
	}
}

// UserGuard admits requests carrying a valid end-user credential for the
// request's environment
type UserGuard struct {
	verifier    Verifier
	header      string
	logger      *logrus.Logger
	instruments Instruments
}

// NewUserGuard creates a user guard reading the credential from header
func NewUserGuard(verifier Verifier, header string, logger *logrus.Logger, instruments Instruments) *UserGuard {
	if header == "" {
		header = AuthorizationHeader
	}
	return &UserGuard{
		verifier:    verifier,
		header:      header,
		logger:      logger,
		instruments: instruments,
	}
}

// Wrap authenticates the end user before running next
func (g *UserGuard) Wrap(next httputil.Handler) httputil.Handler {
	return func(r *http.Request) (*httputil.Result, error) {
		ctx := r.Context()
		start := time.Now()
		env := environment.FromContext(ctx)

		identity, err := g.verifier.Verify(ctx, r.Header.Get(g.header), env)
		if err != nil {
			outcome := failureOutcome(err)
			g.instruments.record(ctx, guardUser, env, outcome, start)
			observability.FromContext(ctx, g.logger).WithError(err).
				WithFields(logrus.Fields{"guard": guardUser, "reason": outcome}).
				Warn("User verification failed")
			return httputil.Text(http.StatusUnauthorized, InvalidUserMessage), nil
		}

		g.instruments.record(ctx, guardUser, env, "success", start)
		authCtx := &auth.AuthContext{Identity: identity, Environment: env}
		res, err := next(r.WithContext(contextkeys.WithUser(ctx, authCtx)))
		if err != nil {
			observability.FromContext(ctx, g.logger).WithError(err).Error("Handler failed")
		}
		return httputil.Complete(res, err), nil
	}
}

// GetDeveloper returns the developer attached by DeveloperGuard
func GetDeveloper(r *http.Request) *auth.AuthContext {
	authCtx, _ := r.Context().Value(contextkeys.DeveloperKey).(*auth.AuthContext)
	return authCtx
}

// GetUser returns the end user attached by UserGuard
func GetUser(r *http.Request) *auth.AuthContext {
	authCtx, _ := r.Context().Value(contextkeys.UserKey).(*auth.AuthContext)
	return authCtx
}
