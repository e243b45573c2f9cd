package api

import (
	"errors"
	"net/http"

	"github.com/roamjs/gateway/pkg/httputil"
	"github.com/roamjs/gateway/pkg/notify"
	"github.com/roamjs/gateway/pkg/observability"
)

// ErrorReportResponse acknowledges a delivered report
type ErrorReportResponse struct {
	Success bool `json:"success"`
}

// reportError forwards an error raised in a client to the operators
func (s *Server) reportError(r *http.Request) (*httputil.Result, error) {
	var report notify.Report
	if err := httputil.ParseJSON(r, &report); err != nil {
		s.countReport("rejected")
		return httputil.Text(http.StatusBadRequest, "Invalid request body"), nil
	}

	if err := s.notifier.Notify(r.Context(), report); err != nil {
		if errors.Is(err, notify.ErrEmptyReport) {
			s.countReport("rejected")
			return httputil.Text(http.StatusBadRequest, "`subject` or `message` is required"), nil
		}
		s.countReport("failed")
		return nil, err
	}

	s.countReport("sent")
	observability.FromContext(r.Context(), s.logger).WithField("subject", report.Subject).Info("Error report sent")
	return httputil.OK(ErrorReportResponse{Success: true}), nil
}

func (s *Server) countReport(status string) {
	if s.metrics != nil {
		s.metrics.ErrorReportsTotal.WithLabelValues(status).Inc()
	}
}
