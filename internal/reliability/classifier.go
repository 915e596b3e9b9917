package reliability

import (
	"errors"

	"github.com/googleapis/gax-go/v2/apierror"
)

// HTTPStatusFromError extracts the HTTP status carried by a Google API error
// chain, or 0 when the error carries none (network faults, local errors).
func HTTPStatusFromError(err error) int {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return code
		}
	}
	return 0
}

// IsModelUnavailableStatus reports whether a status means the model itself
// cannot be invoked (missing, forbidden, retired) as opposed to a transient
// call failure. Unavailability invalidates the resolved candidate so the next
// exchange probes the priority list again.
func IsModelUnavailableStatus(code int) bool {
	switch code {
	case 403, 404, 501:
		return true
	default:
		return false
	}
}

// IsRetryableHTTPStatus classifies transient provider statuses. The gateway
// never retries within an exchange; a transient status just means the resolved
// candidate stays cached for the next one.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
