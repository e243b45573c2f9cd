package billing

import (
	"context"
	"time"

	"github.com/roamjs/gateway/pkg/environment"
)

// UsageType is how a subscription item is billed
type UsageType string

const (
	UsageLicensed UsageType = "licensed"
	UsageMetered  UsageType = "metered"
)

// SubscriptionItem is one priced line of a subscription
type SubscriptionItem struct {
	ID        string
	PriceID   string
	UsageType UsageType
	Quantity  int64
}

// Subscription is a customer's subscription as reported by the provider
type Subscription struct {
	ID                 string
	Items              []SubscriptionItem
	Metadata           map[string]string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
}

// UsageRecord is a metered usage report accepted by the provider
type UsageRecord struct {
	ID        string
	ItemID    string
	Quantity  int64
	Timestamp time.Time
}

// Period is a subscription billing period
type Period struct {
	Start time.Time
	End   time.Time
}

// Provider is the billing provider API used by the reconciler
type Provider interface {
	ListSubscriptions(ctx context.Context, customerID string) ([]*Subscription, error)
	UpdateSubscriptionItemQuantity(ctx context.Context, itemID string, quantity int64) (*SubscriptionItem, error)
	CreateUsageRecord(ctx context.Context, itemID string, quantity int64, timestamp time.Time) (*UsageRecord, error)
}

// Providers holds the provider client of each environment
type Providers struct {
	Production  Provider
	Development Provider
}

// For returns the provider for env
func (p Providers) For(env environment.Environment) Provider {
	if env.IsDev() {
		return p.Development
	}
	return p.Production
}

// UsageRequest is a usage delta reported by an extension developer
type UsageRequest struct {
	ExtensionID string
	CustomerID  string
	Quantity    int64
	Environment environment.Environment
}

// UsageOutcome describes the provider mutation a reconciliation performed
type UsageOutcome struct {
	Kind UsageType
	// RecordID is the usage record id for metered items and the
	// subscription item id for licensed items
	RecordID string
	ItemID   string
	// Quantity is the recorded increment for metered items and the new
	// item quantity for licensed items
	Quantity int64
}
