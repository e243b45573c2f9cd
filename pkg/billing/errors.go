package billing

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason classifies a reconciliation failure
type Reason string

const (
	ReasonInvalidQuantity      Reason = "invalid_quantity"
	ReasonNoCustomer           Reason = "no_customer"
	ReasonUnknownExtension     Reason = "unknown_extension"
	ReasonNoSubscription       Reason = "no_subscription"
	ReasonInvalidMeteredAmount Reason = "invalid_metered_quantity"
	ReasonUnknownUsageType     Reason = "unknown_usage_type"
	ReasonProvider             Reason = "provider_error"
	ReasonRegistry             Reason = "registry_error"
)

// Error is returned for every unsuccessful reconciliation. Status and
// Message are safe to write to the response.
type Error struct {
	Status  int
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ProviderError is a failed provider call. StatusCode is zero when the
// provider did not answer with an HTTP status.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// FromProvider converts a provider failure into an *Error, keeping the
// provider's status (500 when absent) and message
func FromProvider(err error) *Error {
	var berr *Error
	if errors.As(err, &berr) {
		return berr
	}
	status := http.StatusInternalServerError
	msg := err.Error()
	var perr *ProviderError
	if errors.As(err, &perr) {
		if perr.StatusCode != 0 {
			status = perr.StatusCode
		}
		if perr.Message != "" {
			msg = perr.Message
		}
	}
	return &Error{Status: status, Reason: ReasonProvider, Message: msg, Err: err}
}
