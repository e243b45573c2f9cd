package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/roamjs/gateway/pkg/billing")

// usageActionIncrement adds the reported quantity to the period total
const usageActionIncrement = "increment"

// stripeAPI is the subset of the Stripe API used by StripeProvider
type stripeAPI interface {
	ListSubscriptions(params *stripe.SubscriptionListParams) ([]*stripe.Subscription, error)
	UpdateSubscriptionItem(id string, params *stripe.SubscriptionItemParams) (*stripe.SubscriptionItem, error)
	NewUsageRecord(params *stripe.UsageRecordParams) (*stripe.UsageRecord, error)
}

type stripeClient struct {
	api *client.API
}

func (c *stripeClient) ListSubscriptions(params *stripe.SubscriptionListParams) ([]*stripe.Subscription, error) {
	var subs []*stripe.Subscription
	iter := c.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	return subs, iter.Err()
}

func (c *stripeClient) UpdateSubscriptionItem(id string, params *stripe.SubscriptionItemParams) (*stripe.SubscriptionItem, error) {
	return c.api.SubscriptionItems.Update(id, params)
}

func (c *stripeClient) NewUsageRecord(params *stripe.UsageRecordParams) (*stripe.UsageRecord, error) {
	return c.api.UsageRecords.New(params)
}

// StripeProvider implements Provider with the Stripe API
type StripeProvider struct {
	api stripeAPI
}

// NewStripeProvider creates a provider authenticated with secretKey
func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{api: &stripeClient{api: client.New(secretKey, nil)}}
}

// ListSubscriptions returns every subscription of the customer
func (p *StripeProvider) ListSubscriptions(ctx context.Context, customerID string) ([]*Subscription, error) {
	ctx, span := tracer.Start(ctx, "Stripe.ListSubscriptions",
		trace.WithAttributes(attribute.String("stripe.customer", customerID)),
	)
	defer span.End()

	params := &stripe.SubscriptionListParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	subs, err := p.api.ListSubscriptions(params)
	if err != nil {
		return nil, spanError(span, "list subscriptions failed", err)
	}

	out := make([]*Subscription, 0, len(subs))
	for _, s := range subs {
		if s != nil {
			out = append(out, subscriptionFromStripe(s))
		}
	}
	return out, nil
}

// UpdateSubscriptionItemQuantity sets the quantity of a licensed item
func (p *StripeProvider) UpdateSubscriptionItemQuantity(ctx context.Context, itemID string, quantity int64) (*SubscriptionItem, error) {
	ctx, span := tracer.Start(ctx, "Stripe.UpdateSubscriptionItem",
		trace.WithAttributes(
			attribute.String("stripe.subscription_item", itemID),
			attribute.Int64("stripe.quantity", quantity),
		),
	)
	defer span.End()

	params := &stripe.SubscriptionItemParams{Quantity: stripe.Int64(quantity)}
	params.Context = ctx
	item, err := p.api.UpdateSubscriptionItem(itemID, params)
	if err != nil {
		return nil, spanError(span, "update subscription item failed", err)
	}
	return itemFromStripe(item), nil
}

// CreateUsageRecord reports an incremental usage quantity for a metered item
func (p *StripeProvider) CreateUsageRecord(ctx context.Context, itemID string, quantity int64, timestamp time.Time) (*UsageRecord, error) {
	ctx, span := tracer.Start(ctx, "Stripe.CreateUsageRecord",
		trace.WithAttributes(
			attribute.String("stripe.subscription_item", itemID),
			attribute.Int64("stripe.quantity", quantity),
		),
	)
	defer span.End()

	params := &stripe.UsageRecordParams{
		SubscriptionItem: stripe.String(itemID),
		Quantity:         stripe.Int64(quantity),
		Timestamp:        stripe.Int64(timestamp.Unix()),
		Action:           stripe.String(usageActionIncrement),
	}
	params.Context = ctx
	record, err := p.api.NewUsageRecord(params)
	if err != nil {
		return nil, spanError(span, "create usage record failed", err)
	}
	return &UsageRecord{
		ID:        record.ID,
		ItemID:    itemID,
		Quantity:  record.Quantity,
		Timestamp: time.Unix(record.Timestamp, 0).UTC(),
	}, nil
}

func spanError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return providerError(err)
}

// providerError keeps the HTTP status and message of Stripe API errors
func providerError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		msg := serr.Msg
		if msg == "" {
			msg = err.Error()
		}
		return &ProviderError{StatusCode: serr.HTTPStatusCode, Message: msg, Err: err}
	}
	return &ProviderError{Message: fmt.Sprintf("stripe request failed: %v", err), Err: err}
}

func subscriptionFromStripe(s *stripe.Subscription) *Subscription {
	sub := &Subscription{
		ID:                 s.ID,
		Metadata:           s.Metadata,
		CurrentPeriodStart: time.Unix(s.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(s.CurrentPeriodEnd, 0).UTC(),
	}
	if s.Items != nil {
		for _, item := range s.Items.Data {
			if item != nil {
				sub.Items = append(sub.Items, *itemFromStripe(item))
			}
		}
	}
	return sub
}

func itemFromStripe(item *stripe.SubscriptionItem) *SubscriptionItem {
	out := &SubscriptionItem{
		ID:       item.ID,
		Quantity: item.Quantity,
	}
	if item.Price != nil {
		out.PriceID = item.Price.ID
		if item.Price.Recurring != nil {
			out.UsageType = UsageType(item.Price.Recurring.UsageType)
		}
	}
	return out
}
