package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roamjs/gateway/pkg/environment"
)

var tracer = otel.Tracer("github.com/roamjs/gateway/pkg/directory")

// userClient is the subset of the Clerk user API used here
type userClient interface {
	List(ctx context.Context, params *user.ListParams) (*clerk.UserList, error)
	Get(ctx context.Context, id string) (*clerk.User, error)
}

// ClerkDirectory implements Directory on top of the Clerk backend API
type ClerkDirectory struct {
	clients map[environment.Environment]userClient
	logger  logrus.FieldLogger
}

// NewClerkDirectory creates a directory with one Clerk client per environment
func NewClerkDirectory(productionKey, developmentKey string, logger logrus.FieldLogger) *ClerkDirectory {
	return &ClerkDirectory{
		clients: map[environment.Environment]userClient{
			environment.Production:  newUserClient(productionKey),
			environment.Development: newUserClient(developmentKey),
		},
		logger: logger,
	}
}

func (d *ClerkDirectory) log() logrus.FieldLogger {
	if d.logger == nil {
		return logrus.StandardLogger()
	}
	return d.logger
}

func newUserClient(key string) *user.Client {
	return user.NewClient(&clerk.ClientConfig{
		BackendConfig: clerk.BackendConfig{Key: clerk.String(key)},
	})
}

func (d *ClerkDirectory) client(env environment.Environment) (userClient, error) {
	c, ok := d.clients[env]
	if !ok {
		return nil, fmt.Errorf("no directory client for %s", env)
	}
	return c, nil
}

// FindByEmail returns every identity registered with the address
func (d *ClerkDirectory) FindByEmail(ctx context.Context, env environment.Environment, email string) ([]*Identity, error) {
	ctx, span := tracer.Start(ctx, "Directory.FindByEmail",
		trace.WithAttributes(attribute.String("environment", env.String())),
	)
	defer span.End()

	c, err := d.client(env)
	if err != nil {
		return nil, err
	}

	list, err := c.List(ctx, &user.ListParams{EmailAddresses: []string{email}})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list users failed")
		return nil, fmt.Errorf("failed to list users by email: %w", err)
	}

	// A user whose metadata does not decode is skipped so the other
	// holders of the address can still authenticate.
	identities := make([]*Identity, 0, len(list.Users))
	skipped := 0
	for _, u := range list.Users {
		identity, err := identityFromClerk(u)
		if err != nil {
			skipped++
			span.RecordError(err)
			d.log().WithError(err).WithFields(logrus.Fields{
				"environment": env.String(),
				"user_id":     u.ID,
			}).Warn("Skipping directory user with undecodable metadata")
			continue
		}
		identities = append(identities, identity)
	}
	span.SetAttributes(
		attribute.Int("directory.matches", len(identities)),
		attribute.Int("directory.skipped", skipped),
	)
	return identities, nil
}

// FindByID returns the identity with the given id
func (d *ClerkDirectory) FindByID(ctx context.Context, env environment.Environment, id string) (*Identity, error) {
	ctx, span := tracer.Start(ctx, "Directory.FindByID",
		trace.WithAttributes(
			attribute.String("environment", env.String()),
			attribute.String("directory.user_id", id),
		),
	)
	defer span.End()

	c, err := d.client(env)
	if err != nil {
		return nil, err
	}

	u, err := c.Get(ctx, id)
	if err != nil {
		var apiErr *clerk.APIErrorResponse
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "get user failed")
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return identityFromClerk(u)
}

func identityFromClerk(u *clerk.User) (*Identity, error) {
	identity := &Identity{
		ID:     u.ID,
		Public: map[string]json.RawMessage{},
	}
	if u.PrimaryEmailAddressID != nil {
		identity.PrimaryEmailAddressID = *u.PrimaryEmailAddressID
	}
	for _, e := range u.EmailAddresses {
		if e == nil {
			continue
		}
		identity.EmailAddresses = append(identity.EmailAddresses, EmailAddress{
			ID:      e.ID,
			Address: e.EmailAddress,
		})
	}
	if len(u.PrivateMetadata) > 0 {
		if err := json.Unmarshal(u.PrivateMetadata, &identity.Private); err != nil {
			return nil, fmt.Errorf("failed to decode private metadata for %s: %w", u.ID, err)
		}
	}
	if len(u.PublicMetadata) > 0 {
		if err := json.Unmarshal(u.PublicMetadata, &identity.Public); err != nil {
			return nil, fmt.Errorf("failed to decode public metadata for %s: %w", u.ID, err)
		}
	}
	return identity, nil
}
