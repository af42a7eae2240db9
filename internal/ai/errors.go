package ai

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies a model invocation failure. The fallback branch
// switches on this tag instead of re-inspecting error strings at every
// layer.
type ErrorKind string

const (
	// KindQuota covers rate-limit and billing exhaustion responses.
	KindQuota ErrorKind = "quota"
	// KindAuth covers missing or rejected credentials.
	KindAuth ErrorKind = "auth"
	// KindNetwork covers transport failures and timeouts.
	KindNetwork ErrorKind = "network"
	// KindEmpty means the call succeeded but returned no generated text.
	KindEmpty ErrorKind = "empty"
	// KindOther is everything the heuristics cannot place.
	KindOther ErrorKind = "other"
)

// InvokeError is the tagged failure returned by model providers. The
// upstream error text rides along unmodified in Cause.
type InvokeError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *InvokeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model invocation failed (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("model invocation failed (%s): %s", e.Kind, e.Message)
}

func (e *InvokeError) Unwrap() error {
	return e.Cause
}

// IsQuota reports whether err is an InvokeError tagged as quota-class.
func IsQuota(err error) bool {
	var invErr *InvokeError
	return errors.As(err, &invErr) && invErr.Kind == KindQuota
}

// quotaSubstrings are the known markers of rate-limit and billing
// exhaustion in upstream error text. The provider does not expose a
// stable machine-readable taxonomy for these, so substring matching is
// the best available classification.
var quotaSubstrings = []string{
	"quota",
	"rate limit",
	"insufficient_quota",
	"billing",
	"resource_exhausted",
}

// classifyKind maps an upstream error to an ErrorKind. Structured
// signals (HTTP status, net.Error) are checked before falling back to
// substring matching on the message text.
func classifyKind(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return KindQuota
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuth
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	lower := strings.ToLower(err.Error())
	for _, marker := range quotaSubstrings {
		if strings.Contains(lower, marker) {
			return KindQuota
		}
	}
	switch {
	case strings.Contains(lower, "api key") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "permission"):
		return KindAuth
	case strings.Contains(lower, "connection") || strings.Contains(lower, "timeout") || strings.Contains(lower, "no such host"):
		return KindNetwork
	}
	return KindOther
}

// newInvokeError wraps an upstream failure with its classified kind.
func newInvokeError(message string, cause error) *InvokeError {
	return &InvokeError{
		Kind:    classifyKind(cause),
		Message: message,
		Cause:   cause,
	}
}
