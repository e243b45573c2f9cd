package httputil

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/roamjs/gateway/pkg/observability"
)

// Handler produces a result for a request. Guards wrap Handlers, so
// handlers return their response instead of writing it.
type Handler func(r *http.Request) (*Result, error)

// Complete maps the outcome of a handler: a nil result becomes 204 and an
// error becomes 500 with the error's message
func Complete(res *Result, err error) *Result {
	if err != nil {
		return InternalError(err)
	}
	if res == nil {
		return NoContent()
	}
	return res
}

// Serve adapts h to http.Handler
func Serve(h Handler, logger *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := h(r)
		if err != nil {
			observability.FromContext(r.Context(), logger).WithError(err).Error("Handler failed")
		}
		if werr := WriteResult(w, Complete(res, err)); werr != nil {
			observability.FromContext(r.Context(), logger).WithError(werr).Warn("Failed to write response")
		}
	})
}
