package billing

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromProvider(t *testing.T) {
	perr := &ProviderError{StatusCode: http.StatusPaymentRequired, Message: "card declined"}
	berr := FromProvider(fmt.Errorf("failed: %w", perr))
	assert.Equal(t, http.StatusPaymentRequired, berr.Status)
	assert.Equal(t, "card declined", berr.Message)
	assert.Equal(t, ReasonProvider, berr.Reason)
	assert.ErrorIs(t, berr, perr)

	berr = FromProvider(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, berr.Status)
	assert.Equal(t, "boom", berr.Message)

	existing := &Error{Status: http.StatusConflict, Message: "conflict"}
	assert.Same(t, existing, FromProvider(fmt.Errorf("wrapped: %w", existing)))
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "bad", (&Error{Message: "bad"}).Error())
	assert.Equal(t, "bad: cause", (&Error{Message: "bad", Err: errors.New("cause")}).Error())
}
