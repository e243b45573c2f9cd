package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/roamjs/gateway/pkg/environment"
	"github.com/roamjs/gateway/pkg/registry"
)

// ProjectMetadataKey and ProjectMetadataValue mark the subscription whose
// period is reported to extensions
const (
	ProjectMetadataKey   = "project"
	ProjectMetadataValue = "RoamJS"
)

// Reconciler applies usage deltas to customer subscriptions
type Reconciler struct {
	store     registry.Store
	providers Providers
	now       func() time.Time
}

// NewReconciler creates a reconciler. now defaults to time.Now.
func NewReconciler(store registry.Store, providers Providers, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		store:     store,
		providers: providers,
		now:       now,
	}
}

// Reconcile applies req to the customer's subscription item for the
// extension. Every failure is an *Error.
func (r *Reconciler) Reconcile(ctx context.Context, req UsageRequest) (*UsageOutcome, error) {
	if req.Quantity == 0 {
		return nil, &Error{
			Status:  http.StatusBadRequest,
			Reason:  ReasonInvalidQuantity,
			Message: "`quantity` is required and must not be 0",
		}
	}
	if req.CustomerID == "" {
		return nil, &Error{
			Status:  http.StatusConflict,
			Reason:  ReasonNoCustomer,
			Message: fmt.Sprintf("There is no billing customer subscribed to %s", req.ExtensionID),
		}
	}

	priceID, err := r.priceID(ctx, req.Environment, req.ExtensionID)
	if err != nil {
		return nil, err
	}

	provider := r.providers.For(req.Environment)
	subs, err := provider.ListSubscriptions(ctx, req.CustomerID)
	if err != nil {
		return nil, FromProvider(fmt.Errorf("failed to list subscriptions: %w", err))
	}

	item, ok := findItem(subs, priceID)
	if !ok {
		return nil, noSubscription(req.ExtensionID)
	}

	switch item.UsageType {
	case UsageLicensed:
		quantity := item.Quantity + req.Quantity
		updated, err := provider.UpdateSubscriptionItemQuantity(ctx, item.ID, quantity)
		if err != nil {
			return nil, FromProvider(fmt.Errorf("failed to update subscription item: %w", err))
		}
		return &UsageOutcome{
			Kind:     UsageLicensed,
			RecordID: updated.ID,
			ItemID:   item.ID,
			Quantity: updated.Quantity,
		}, nil

	case UsageMetered:
		if req.Quantity < 0 {
			return nil, &Error{
				Status:  http.StatusBadRequest,
				Reason:  ReasonInvalidMeteredAmount,
				Message: "quantity must be greater than 0 for metered usage",
			}
		}
		record, err := provider.CreateUsageRecord(ctx, item.ID, req.Quantity, r.now().Truncate(time.Second))
		if err != nil {
			return nil, FromProvider(fmt.Errorf("failed to create usage record: %w", err))
		}
		return &UsageOutcome{
			Kind:     UsageMetered,
			RecordID: record.ID,
			ItemID:   item.ID,
			Quantity: req.Quantity,
		}, nil

	default:
		return nil, &Error{
			Status:  http.StatusInternalServerError,
			Reason:  ReasonUnknownUsageType,
			Message: fmt.Sprintf("unknown usage type %q for extension %s", item.UsageType, req.ExtensionID),
		}
	}
}

// CurrentPeriod returns the billing period of the customer's RoamJS
// subscription, or nil when the customer has none
func (r *Reconciler) CurrentPeriod(ctx context.Context, env environment.Environment, customerID string) (*Period, error) {
	if customerID == "" {
		return nil, nil
	}
	subs, err := r.providers.For(env).ListSubscriptions(ctx, customerID)
	if err != nil {
		return nil, FromProvider(fmt.Errorf("failed to list subscriptions: %w", err))
	}
	for _, sub := range subs {
		if sub.Metadata[ProjectMetadataKey] == ProjectMetadataValue {
			return &Period{Start: sub.CurrentPeriodStart, End: sub.CurrentPeriodEnd}, nil
		}
	}
	return nil, nil
}

func (r *Reconciler) priceID(ctx context.Context, env environment.Environment, extensionID string) (string, error) {
	reg, err := r.store.Get(ctx, env, extensionID)
	if errors.Is(err, registry.ErrNotFound) {
		return "", &Error{
			Status:  http.StatusConflict,
			Reason:  ReasonUnknownExtension,
			Message: fmt.Sprintf("No Extension exists with id %s", extensionID),
			Err:     err,
		}
	}
	if err != nil {
		return "", &Error{
			Status:  http.StatusInternalServerError,
			Reason:  ReasonRegistry,
			Message: fmt.Sprintf("failed to look up extension %s", extensionID),
			Err:     err,
		}
	}
	if reg.PriceID == "" {
		return "", noSubscription(extensionID)
	}
	return reg.PriceID, nil
}

// findItem returns the first item across subs whose price is priceID
func findItem(subs []*Subscription, priceID string) (SubscriptionItem, bool) {
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		for _, item := range sub.Items {
			if item.PriceID == priceID {
				return item, true
			}
		}
	}
	return SubscriptionItem{}, false
}

func noSubscription(extensionID string) *Error {
	return &Error{
		Status:  http.StatusConflict,
		Reason:  ReasonNoSubscription,
		Message: fmt.Sprintf("There is no subscription attached to extension %s", extensionID),
	}
}
