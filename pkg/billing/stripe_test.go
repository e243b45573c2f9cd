package billing

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

// mockStripeAPI is a mock implementation of stripeAPI
type mockStripeAPI struct {
	listFunc   func(params *stripe.SubscriptionListParams) ([]*stripe.Subscription, error)
	updateFunc func(id string, params *stripe.SubscriptionItemParams) (*stripe.SubscriptionItem, error)
	usageFunc  func(params *stripe.UsageRecordParams) (*stripe.UsageRecord, error)
}

func (m *mockStripeAPI) ListSubscriptions(params *stripe.SubscriptionListParams) ([]*stripe.Subscription, error) {
	return m.listFunc(params)
}

func (m *mockStripeAPI) UpdateSubscriptionItem(id string, params *stripe.SubscriptionItemParams) (*stripe.SubscriptionItem, error) {
	return m.updateFunc(id, params)
}

func (m *mockStripeAPI) NewUsageRecord(params *stripe.UsageRecordParams) (*stripe.UsageRecord, error) {
	return m.usageFunc(params)
}

func TestStripeProvider_ListSubscriptions(t *testing.T) {
	api := &mockStripeAPI{
		listFunc: func(params *stripe.SubscriptionListParams) ([]*stripe.Subscription, error) {
			assert.Equal(t, "cus_1", stripe.StringValue(params.Customer))
			assert.NotNil(t, params.Context)
			return []*stripe.Subscription{{
				ID:                 "sub_1",
				Metadata:           map[string]string{"project": "RoamJS"},
				CurrentPeriodStart: 1700000000,
				CurrentPeriodEnd:   1702592000,
				Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{
					{
						ID:       "si_licensed",
						Quantity: 4,
						Price: &stripe.Price{
							ID:        "price_a",
							Recurring: &stripe.PriceRecurring{UsageType: stripe.PriceRecurringUsageTypeLicensed},
						},
					},
					{
						ID: "si_metered",
						Price: &stripe.Price{
							ID:        "price_b",
							Recurring: &stripe.PriceRecurring{UsageType: stripe.PriceRecurringUsageTypeMetered},
						},
					},
					{ID: "si_one_time", Price: &stripe.Price{ID: "price_c"}},
				}},
			}}, nil
		},
	}
	p := &StripeProvider{api: api}

	subs, err := p.ListSubscriptions(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Len(t, subs, 1)

	sub := subs[0]
	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, "RoamJS", sub.Metadata["project"])
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), sub.CurrentPeriodStart)
	assert.Equal(t, []SubscriptionItem{
		{ID: "si_licensed", PriceID: "price_a", UsageType: UsageLicensed, Quantity: 4},
		{ID: "si_metered", PriceID: "price_b", UsageType: UsageMetered},
		{ID: "si_one_time", PriceID: "price_c"},
	}, sub.Items)
}

func TestStripeProvider_UpdateSubscriptionItemQuantity(t *testing.T) {
	api := &mockStripeAPI{
		updateFunc: func(id string, params *stripe.SubscriptionItemParams) (*stripe.SubscriptionItem, error) {
			assert.Equal(t, "si_1", id)
			return &stripe.SubscriptionItem{ID: id, Quantity: stripe.Int64Value(params.Quantity)}, nil
		},
	}
	p := &StripeProvider{api: api}

	item, err := p.UpdateSubscriptionItemQuantity(context.Background(), "si_1", 8)
	require.NoError(t, err)
	assert.Equal(t, "si_1", item.ID)
	assert.Equal(t, int64(8), item.Quantity)
}

func TestStripeProvider_CreateUsageRecord(t *testing.T) {
	ts := time.Unix(1700000123, 0)
	api := &mockStripeAPI{
		usageFunc: func(params *stripe.UsageRecordParams) (*stripe.UsageRecord, error) {
			assert.Equal(t, "si_1", stripe.StringValue(params.SubscriptionItem))
			assert.Equal(t, "increment", stripe.StringValue(params.Action))
			assert.Equal(t, int64(1700000123), stripe.Int64Value(params.Timestamp))
			return &stripe.UsageRecord{
				ID:        "mbur_1",
				Quantity:  stripe.Int64Value(params.Quantity),
				Timestamp: stripe.Int64Value(params.Timestamp),
			}, nil
		},
	}
	p := &StripeProvider{api: api}

	record, err := p.CreateUsageRecord(context.Background(), "si_1", 10, ts)
	require.NoError(t, err)
	assert.Equal(t, "mbur_1", record.ID)
	assert.Equal(t, int64(10), record.Quantity)
	assert.Equal(t, ts.UTC(), record.Timestamp)
}

func TestStripeProvider_Errors(t *testing.T) {
	api := &mockStripeAPI{
		listFunc: func(*stripe.SubscriptionListParams) ([]*stripe.Subscription, error) {
			return nil, &stripe.Error{HTTPStatusCode: http.StatusNotFound, Msg: "No such customer: 'cus_x'"}
		},
		usageFunc: func(*stripe.UsageRecordParams) (*stripe.UsageRecord, error) {
			return nil, errors.New("dial tcp: timeout")
		},
	}
	p := &StripeProvider{api: api}

	_, err := p.ListSubscriptions(context.Background(), "cus_x")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusNotFound, perr.StatusCode)
	assert.Equal(t, "No such customer: 'cus_x'", perr.Message)

	_, err = p.CreateUsageRecord(context.Background(), "si_1", 1, time.Now())
	require.ErrorAs(t, err, &perr)
	assert.Zero(t, perr.StatusCode)
	assert.Contains(t, perr.Message, "dial tcp: timeout")
}
