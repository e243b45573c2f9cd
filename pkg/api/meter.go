package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roamjs/gateway/pkg/billing"
	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/environment"
	"github.com/roamjs/gateway/pkg/httputil"
	"github.com/roamjs/gateway/pkg/middleware"
	"github.com/roamjs/gateway/pkg/observability"
)

// MeterRequest is the body of POST /meter. ID takes precedence over Email
// when both are present.
type MeterRequest struct {
	Quantity int64  `json:"quantity"`
	Email    string `json:"email"`
	ID       string `json:"id"`
}

// MeterResponse is returned once usage has been applied
type MeterResponse struct {
	ID string `json:"id"`
}

// meter applies a usage delta reported by a developer for one of their
// customers
func (s *Server) meter(r *http.Request) (*httputil.Result, error) {
	ctx := r.Context()
	env := environment.FromContext(ctx)
	extension := middleware.TargetExtension(r)

	var req MeterRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		return httputil.Text(http.StatusBadRequest, "Invalid request body"), nil
	}
	if extension == "" {
		return httputil.Text(http.StatusBadRequest, fmt.Sprintf("`%s` header is required to meter user", middleware.ExtensionHeader)), nil
	}
	if req.Quantity == 0 {
		return httputil.Text(http.StatusBadRequest, "`quantity` is required and must not be zero"), nil
	}
	if req.Email == "" && req.ID == "" {
		return httputil.Text(http.StatusBadRequest, "`email` or `id` is required to meter user"), nil
	}

	customer, err := s.resolveCustomer(ctx, env, extension, req)
	if err != nil {
		var conflict *customerConflict
		if errors.As(err, &conflict) {
			return httputil.Text(http.StatusConflict, conflict.Error()), nil
		}
		return nil, err
	}

	start := time.Now()
	outcome, err := s.billing.Reconcile(ctx, billing.UsageRequest{
		ExtensionID: extension,
		CustomerID:  customer.Private.StripeID,
		Quantity:    req.Quantity,
		Environment: env,
	})
	log := observability.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"extension": extension,
		"customer":  customer.ID,
		"quantity":  req.Quantity,
	})
	if err != nil {
		berr := billing.FromProvider(err)
		s.recordUsage(ctx, env, extension, "", req.Quantity, berr.Status, time.Since(start))
		log.WithError(err).WithField("reason", berr.Reason).Warn("Usage reconciliation failed")
		return httputil.Text(berr.Status, berr.Message), nil
	}

	s.recordUsage(ctx, env, extension, outcome.Kind, outcome.Quantity, http.StatusOK, time.Since(start))
	log.WithFields(logrus.Fields{
		"kind":   outcome.Kind,
		"record": outcome.RecordID,
	}).Info("Usage reconciled")
	return httputil.OK(MeterResponse{ID: outcome.RecordID}), nil
}

// customerConflict means no identity could be billed for the extension
type customerConflict struct {
	message string
}

func (e *customerConflict) Error() string {
	return e.message
}

// resolveCustomer finds the identity to bill: by id when given, otherwise
// the first identity with the address that holds data for the extension
func (s *Server) resolveCustomer(ctx context.Context, env environment.Environment, extension string, req MeterRequest) (*directory.Identity, error) {
	if req.ID != "" {
		identity, err := s.directory.FindByID(ctx, env, req.ID)
		if errors.Is(err, directory.ErrNotFound) {
			return nil, &customerConflict{fmt.Sprintf("There are no customers with id %s subscribed to %s", req.ID, extension)}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up customer: %w", err)
		}
		return identity, nil
	}

	identities, err := s.directory.FindByEmail(ctx, env, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	for _, identity := range identities {
		if identity.HasExtension(extension) {
			return identity, nil
		}
	}
	return nil, &customerConflict{fmt.Sprintf("There are no customers with email %s subscribed to %s", req.Email, extension)}
}

func (s *Server) recordUsage(ctx context.Context, env environment.Environment, extension string, kind billing.UsageType, quantity int64, status int, duration time.Duration) {
	kindLabel := string(kind)
	if kindLabel == "" {
		kindLabel = "unknown"
	}
	if s.metrics != nil {
		s.metrics.UsageReconciliationsTotal.WithLabelValues(env.String(), kindLabel, strconv.Itoa(status)).Inc()
		if kind == billing.UsageMetered && status == http.StatusOK {
			s.metrics.UsageQuantityTotal.WithLabelValues(env.String(), extension).Add(float64(quantity))
		}
	}
	s.otel.RecordReconciliation(ctx, env.String(), extension, kindLabel, quantity, status, duration)
}
