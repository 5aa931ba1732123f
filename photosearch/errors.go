package photosearch

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the library can surface. The set is closed:
// providers map whatever the upstream API does onto one of these.
type Kind string

const (
	KindMissingQuery      Kind = "missing_query"
	KindMissingAccessKey  Kind = "missing_access_key"
	KindInvalidAccessKey  Kind = "invalid_access_key"
	KindInvalidCount      Kind = "invalid_count"
	KindRateLimitExceeded Kind = "rate_limit_exceeded"
	KindNoResultsFound    Kind = "no_results_found"
	KindNetworkError      Kind = "network_error"
	KindAPIError          Kind = "api_error"
	KindUnknownError      Kind = "unknown_error"
)

// Error is the single error type returned from validation and search.
// StatusCode is the HTTP-style code the failure surfaces as, which is not
// always the upstream status (a 403 from the API surfaces as 429).
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from err. Errors that did not originate in this
// library classify as KindUnknownError; a nil err has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknownError
}

// StatusOf extracts the HTTP-style status code from err, defaulting to 500
// for errors that did not originate in this library.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 500
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
