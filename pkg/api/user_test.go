package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamjs/gateway/pkg/billing"
	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/environment"
	"github.com/roamjs/gateway/pkg/middleware"
)

func userRequest(extension, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/user"+query, nil)
	req.Header.Set("Authorization", developerCredential)
	req.Header.Set("x-roamjs-token", userCredential)
	if extension != "" {
		req.Header.Set("x-roamjs-extension", extension)
	}
	return req
}

func TestUserInfoBuilder(t *testing.T) {
	period := &billing.Period{Start: time.Unix(100, 0), End: time.Unix(200, 0)}

	info := NewUserInfoBuilder(endUser).
		WithData(map[string]any{"token": "secret", "authenticated": true, "plan": "pro"}).
		WithPayPeriod(period).
		WithStripeAccount("acct_1").
		Build()

	assert.Equal(t, map[string]any{"plan": "pro"}, info.Data)
	assert.Equal(t, "ada@example.com", info.Email)
	assert.Equal(t, "user_1", info.ID)
	assert.Equal(t, period, info.PayPeriod)
	require.NotNil(t, info.StripeAccountID)
	assert.Equal(t, "acct_1", *info.StripeAccountID)

	body, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":"pro","email":"ada@example.com","id":"user_1","start":100,"end":200,"stripeAccountId":"acct_1"}`, string(body))

	bare := NewUserInfoBuilder(&directory.Identity{ID: "user_2"}).WithPayPeriod(nil).WithStripeAccount("").Build()
	body, err = json.Marshal(bare)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"user_2"}`, string(body))
}

func TestUserInfo(t *testing.T) {
	f := newFixture(t)

	rec := f.do(userRequest("query-builder", ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"plan":"pro","email":"ada@example.com","id":"user_1"}`, rec.Body.String())
}

func TestUserInfo_ExpandPeriod(t *testing.T) {
	f := newFixture(t)
	f.billing.currentPeriodFunc = func(env environment.Environment, customerID string) (*billing.Period, error) {
		assert.Equal(t, environment.Development, env)
		assert.Equal(t, "cus_1", customerID)
		return &billing.Period{Start: time.Unix(1700000000, 0), End: time.Unix(1702592000, 0)}, nil
	}

	req := userRequest("query-builder", "?expand=period")
	req.Header.Set("x-roamjs-dev", "1")
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"plan":"pro","email":"ada@example.com","id":"user_1","start":1700000000,"end":1702592000}`, rec.Body.String())
	// Developer against production, user against the request environment
	assert.Equal(t, []environment.Environment{environment.Production, environment.Development}, f.verifier.envs)
}

func TestUserInfo_PeriodProviderError(t *testing.T) {
	f := newFixture(t)
	f.billing.currentPeriodFunc = func(environment.Environment, string) (*billing.Period, error) {
		return nil, &billing.ProviderError{StatusCode: http.StatusBadGateway, Message: "upstream down"}
	}

	rec := f.do(userRequest("query-builder", "?expand=period"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream down", rec.Body.String())
}

func TestUserInfo_ConnectAccount(t *testing.T) {
	f := newFixture(t)

	rec := f.do(userRequest("developer", ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"paths":["/a"],"email":"ada@example.com","id":"user_1","stripeAccountId":"acct_1"}`, rec.Body.String())
}

func TestUserInfo_NoExtensionData(t *testing.T) {
	f := newFixture(t)
	f.server = NewServer(Config{
		Verifier:  f.verifier,
		Directory: f.directory,
		Store:     &mockStore{owned: map[string][]string{"user_dev": {"smartblocks"}}},
		Billing:   f.billing,
		Notifier:  f.notifier,
		Logger:    f.server.logger,
	})

	rec := f.do(userRequest("smartblocks", ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User does not currently have any smartblocks data.", rec.Body.String())
}

func TestUserInfo_InvalidUserToken(t *testing.T) {
	f := newFixture(t)
	req := userRequest("query-builder", "")
	req.Header.Set("x-roamjs-token", "Bearer nobody")

	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, middleware.InvalidUserMessage, rec.Body.String())
}

func TestUserInfo_InvalidDeveloperToken(t *testing.T) {
	f := newFixture(t)
	req := userRequest("query-builder", "")
	req.Header.Set("Authorization", "Bearer nobody")

	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, middleware.InvalidDeveloperMessage, rec.Body.String())
	// The user guard never ran
	assert.Len(t, f.verifier.envs, 1)
}
