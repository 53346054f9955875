package types

import (
	"errors"
	"fmt"
)

// ErrorDetail is the structured shape every gm failure reduces to on
// output. Type is a stable machine-readable code so agent callers can
// branch on it; Suggestions carry remediation hints for humans.
type ErrorDetail struct {
	Type        string   `json:"type"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AuthenticationError means the API key was missing or rejected (401).
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// RateLimitError means the origin refused the request (429). RetryAfter
// is the raw Retry-After header value, "unknown" when absent. The origin
// enforces roughly 100 points per 15 minutes.
type RateLimitError struct {
	Message    string
	RetryAfter string
}

func (e *RateLimitError) Error() string { return e.Message }

// NewRateLimitError builds the 429 error from a Retry-After hint.
func NewRateLimitError(retryAfter string) *RateLimitError {
	return &RateLimitError{
		Message:    fmt.Sprintf("Rate limit exceeded. Retry after %ss", retryAfter),
		RetryAfter: retryAfter,
	}
}

// NotFoundError is a single-resource lookup miss (404).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// APIError is any other non-2xx origin response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
}

// ConfigError means required configuration is missing or invalid.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// GroupNotFoundError is raised for an unknown calendar group name.
type GroupNotFoundError struct {
	Message     string
	Suggestions []string
}

func (e *GroupNotFoundError) Error() string { return e.Message }

// Describe flattens any error into the structured shape the CLI prints.
// Untyped errors come back with the generic "gm_error" code.
func Describe(err error) ErrorDetail {
	var (
		authErr  *AuthenticationError
		rateErr  *RateLimitError
		nfErr    *NotFoundError
		apiErr   *APIError
		cfgErr   *ConfigError
		groupErr *GroupNotFoundError
	)
	switch {
	case errors.As(err, &authErr):
		return ErrorDetail{
			Type:    "authentication_error",
			Message: authErr.Message,
			Suggestions: []string{
				"Run `gm config init` to create a config file",
				"Or set GM_API_KEY in your environment",
				"Verify the key at https://platform.morgen.so/",
			},
		}
	case errors.As(err, &rateErr):
		return ErrorDetail{
			Type:    "rate_limit_error",
			Message: rateErr.Message,
			Suggestions: []string{
				fmt.Sprintf("Wait %s seconds before retrying", rateErr.RetryAfter),
				"Reduce request frequency (100 pts / 15 min)",
			},
		}
	case errors.As(err, &nfErr):
		return ErrorDetail{Type: "not_found", Message: nfErr.Message}
	case errors.As(err, &apiErr):
		return ErrorDetail{Type: "api_error", Message: apiErr.Error()}
	case errors.As(err, &cfgErr):
		return ErrorDetail{
			Type:    "config_error",
			Message: cfgErr.Message,
			Suggestions: []string{
				"Run `gm config init` to create a config file",
				"Or set GM_API_KEY in your environment",
			},
		}
	case errors.As(err, &groupErr):
		return ErrorDetail{
			Type:        "group_not_found",
			Message:     groupErr.Message,
			Suggestions: groupErr.Suggestions,
		}
	}
	return ErrorDetail{Type: "gm_error", Message: err.Error()}
}
