package photosearch

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ValidateQuery checks the search term. The trimmed form is what providers
// send, so length limits apply after trimming.
func ValidateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return &Error{
			Kind:       KindMissingQuery,
			Message:    "search query is required",
			StatusCode: http.StatusBadRequest,
		}
	}
	if utf8.RuneCountInString(trimmed) > MaxQueryLength {
		return &Error{
			Kind:       KindMissingQuery,
			Message:    fmt.Sprintf("search query exceeds %d characters", MaxQueryLength),
			StatusCode: http.StatusBadRequest,
		}
	}
	return nil
}

// ValidateAccessKey checks that a credential is present and structurally
// plausible. The length check is a heuristic against truncated keys, not a
// verification of the credential itself.
func ValidateAccessKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return &Error{
			Kind:       KindMissingAccessKey,
			Message:    "access key is required",
			StatusCode: http.StatusBadRequest,
		}
	}
	if len(trimmed) < MinAccessKeyLength {
		return &Error{
			Kind:       KindInvalidAccessKey,
			Message:    fmt.Sprintf("access key must be at least %d characters", MinAccessKeyLength),
			StatusCode: http.StatusBadRequest,
		}
	}
	return nil
}

// NormalizeOptions applies defaults and rejects out-of-range values.
// Count 0 means unset and becomes DefaultCount; anything else outside
// [1, MaxCount] is an error. Orientation stays unset unless supplied.
func NormalizeOptions(opts Options) (Options, error) {
	if opts.Count == 0 {
		opts.Count = DefaultCount
	}
	if opts.Count < 1 || opts.Count > MaxCount {
		return Options{}, &Error{
			Kind:       KindInvalidCount,
			Message:    fmt.Sprintf("count must be between 1 and %d, got %d", MaxCount, opts.Count),
			StatusCode: http.StatusBadRequest,
		}
	}
	if opts.Orientation != "" && !opts.Orientation.IsValid() {
		return Options{}, &Error{
			Kind:       KindInvalidCount,
			Message:    fmt.Sprintf("orientation must be one of landscape, portrait, squarish, got %q", opts.Orientation),
			StatusCode: http.StatusBadRequest,
		}
	}
	if opts.Size == "" {
		opts.Size = SizeRegular
	}
	if !opts.Size.IsValid() {
		return Options{}, &Error{
			Kind:       KindInvalidCount,
			Message:    fmt.Sprintf("size must be one of raw, full, regular, small, thumb, got %q", opts.Size),
			StatusCode: http.StatusBadRequest,
		}
	}
	return opts, nil
}

// ValidateRequest runs the full validation pipeline in order: query, then
// access key, then options. The first violated rule is the one reported.
// On success it returns the trimmed query, the trimmed access key, and the
// normalized options, which is the only form a provider may put on the wire.
func ValidateRequest(query, accessKey string, opts Options) (string, string, Options, error) {
	if err := ValidateQuery(query); err != nil {
		return "", "", Options{}, err
	}
	if err := ValidateAccessKey(accessKey); err != nil {
		return "", "", Options{}, err
	}
	normalized, err := NormalizeOptions(opts)
	if err != nil {
		return "", "", Options{}, err
	}
	return strings.TrimSpace(query), strings.TrimSpace(accessKey), normalized, nil
}
