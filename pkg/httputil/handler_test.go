package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamjs/gateway/pkg/contextkeys"
	"github.com/roamjs/gateway/pkg/observability"
)

func testLogger() *logrus.Logger {
	return observability.NewLogger(logrus.InfoLevel, io.Discard)
}

func TestServe(t *testing.T) {
	tests := []struct {
		name       string
		handler    Handler
		wantStatus int
		wantBody   string
	}{
		{
			name:       "result",
			handler:    func(*http.Request) (*Result, error) { return Text(http.StatusConflict, "conflict"), nil },
			wantStatus: http.StatusConflict,
			wantBody:   "conflict",
		},
		{
			name:       "nil result",
			handler:    func(*http.Request) (*Result, error) { return nil, nil },
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "error",
			handler:    func(*http.Request) (*Result, error) { return nil, errors.New("exploded") },
			wantStatus: http.StatusInternalServerError,
			wantBody:   "exploded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Serve(tt.handler, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextkeys.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", seen)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAllowOriginMiddleware(t *testing.T) {
	var called bool
	h := AllowOriginMiddleware("https://roamresearch.com", "Authorization")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusUnauthorized)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/meter", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "https://roamresearch.com", rec.Header().Get("Access-Control-Allow-Origin"))

	called = false
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/meter", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(mw("a"), mw("b"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestParseJSON(t *testing.T) {
	var body struct {
		Quantity int64  `json:"quantity"`
		Email    string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":3,"email":"a@example.com"}`))
	require.NoError(t, ParseJSON(req, &body))
	assert.Equal(t, int64(3), body.Quantity)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, ParseJSON(req, &body))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.Error(t, ParseJSON(req, &body))
}

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/user?expand=period", nil)
	assert.Equal(t, "period", ParseQueryString(req, "expand", ""))
	assert.Equal(t, "none", ParseQueryString(req, "missing", "none"))
}
