package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamjs/gateway/pkg/auth"
	"github.com/roamjs/gateway/pkg/billing"
	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/environment"
	"github.com/roamjs/gateway/pkg/notify"
	"github.com/roamjs/gateway/pkg/observability"
	"github.com/roamjs/gateway/pkg/registry"
)

const (
	developerCredential = "Bearer developer"
	userCredential      = "Bearer user"
)

// mockVerifier accepts fixed credentials
type mockVerifier struct {
	identities map[string]*directory.Identity
	envs       []environment.Environment
}

func (m *mockVerifier) Verify(_ context.Context, header string, env environment.Environment) (*directory.Identity, error) {
	m.envs = append(m.envs, env)
	if identity, ok := m.identities[header]; ok {
		return identity, nil
	}
	return nil, &auth.VerificationFailure{Reason: auth.FailureTokenMismatch}
}

// mockStore is a mock implementation of registry.Store
type mockStore struct {
	owned map[string][]string
}

func (m *mockStore) Get(context.Context, environment.Environment, string) (*registry.Registration, error) {
	return nil, registry.ErrNotFound
}

func (m *mockStore) ListByOwner(_ context.Context, _ environment.Environment, ownerID string) ([]string, error) {
	return m.owned[ownerID], nil
}

// mockDirectory is a mock implementation of directory.Directory
type mockDirectory struct {
	findByEmailFunc func(env environment.Environment, email string) ([]*directory.Identity, error)
	findByIDFunc    func(env environment.Environment, id string) (*directory.Identity, error)
}

func (m *mockDirectory) FindByEmail(_ context.Context, env environment.Environment, email string) ([]*directory.Identity, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(env, email)
	}
	return nil, nil
}

func (m *mockDirectory) FindByID(_ context.Context, env environment.Environment, id string) (*directory.Identity, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(env, id)
	}
	return nil, directory.ErrNotFound
}

// mockBilling is a mock implementation of Billing
type mockBilling struct {
	reconcileFunc     func(req billing.UsageRequest) (*billing.UsageOutcome, error)
	currentPeriodFunc func(env environment.Environment, customerID string) (*billing.Period, error)
	requests          []billing.UsageRequest
}

func (m *mockBilling) Reconcile(_ context.Context, req billing.UsageRequest) (*billing.UsageOutcome, error) {
	m.requests = append(m.requests, req)
	if m.reconcileFunc != nil {
		return m.reconcileFunc(req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockBilling) CurrentPeriod(_ context.Context, env environment.Environment, customerID string) (*billing.Period, error) {
	if m.currentPeriodFunc != nil {
		return m.currentPeriodFunc(env, customerID)
	}
	return nil, nil
}

// mockNotifier records reports
type mockNotifier struct {
	err     error
	reports []notify.Report
}

func (m *mockNotifier) Notify(_ context.Context, report notify.Report) error {
	if err := report.Validate(); err != nil {
		return err
	}
	m.reports = append(m.reports, report)
	return m.err
}

type fixture struct {
	verifier  *mockVerifier
	directory *mockDirectory
	billing   *mockBilling
	notifier  *mockNotifier
	metrics   *observability.Metrics
	registry  *prometheus.Registry
	server    *Server
}

var (
	developer = &directory.Identity{ID: "user_dev"}
	endUser   = &directory.Identity{
		ID:                    "user_1",
		EmailAddresses:        []directory.EmailAddress{{ID: "em_1", Address: "ada@example.com"}},
		PrimaryEmailAddressID: "em_1",
		Private:               directory.PrivateAttributes{StripeID: "cus_1", StripeAccount: "acct_1"},
		Public: map[string]json.RawMessage{
			"queryBuilder": json.RawMessage(`{"token":"secret","authenticated":true,"plan":"pro"}`),
			"developer":    json.RawMessage(`{"paths":["/a"]}`),
		},
	}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	f := &fixture{
		verifier: &mockVerifier{identities: map[string]*directory.Identity{
			developerCredential: developer,
			userCredential:      endUser,
		}},
		directory: &mockDirectory{},
		billing:   &mockBilling{},
		notifier:  &mockNotifier{},
		metrics:   observability.NewMetrics(reg),
		registry:  reg,
	}
	f.server = NewServer(Config{
		Verifier:  f.verifier,
		Directory: f.directory,
		Store:     &mockStore{owned: map[string][]string{"user_dev": {"query-builder", "developer"}}},
		Billing:   f.billing,
		Notifier:  f.notifier,
		Logger:    observability.NewLogger(logrus.InfoLevel, io.Discard),
		Metrics:   f.metrics,
		Registry:  reg,
	})
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestServer_AllowOrigin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultAllowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// Guard rejections carry the header as well
	rec = f.do(jsonRequest(t, http.MethodPost, "/meter", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, DefaultAllowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Preflight(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodOptions, "/meter", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "x-roamjs-token")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "x-roamjs-dev")
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)
	f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `roamjs_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestServer_UnknownRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
