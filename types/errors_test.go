package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantType string
	}{
		{"auth", &AuthenticationError{Message: "bad key"}, "authentication_error"},
		{"rate limit", NewRateLimitError("30"), "rate_limit_error"},
		{"not found", &NotFoundError{Message: "gone"}, "not_found"},
		{"api", &APIError{Status: 500, Body: "boom"}, "api_error"},
		{"config", &ConfigError{Message: "no key"}, "config_error"},
		{"group", &GroupNotFoundError{Message: "no group"}, "group_not_found"},
		{"untyped", errors.New("plain"), "gm_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Describe(tc.err)
			if d.Type != tc.wantType {
				t.Errorf("type = %q, want %q", d.Type, tc.wantType)
			}
			if d.Message == "" {
				t.Error("message should never be empty")
			}
		})
	}
}

func TestDescribe_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("listing accounts: %w", &AuthenticationError{Message: "bad key"})
	d := Describe(wrapped)
	if d.Type != "authentication_error" {
		t.Errorf("type = %q, wrapped errors should still classify", d.Type)
	}
}

func TestDescribe_RateLimitSuggestionsCarryRetryAfter(t *testing.T) {
	d := Describe(NewRateLimitError("42"))
	if len(d.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if d.Suggestions[0] != "Wait 42 seconds before retrying" {
		t.Errorf("suggestion = %q", d.Suggestions[0])
	}
}

func TestDescribe_AuthSuggestionsPointAtConfig(t *testing.T) {
	d := Describe(&AuthenticationError{Message: "bad key"})
	if len(d.Suggestions) != 3 {
		t.Fatalf("suggestions = %v", d.Suggestions)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	e := &APIError{Status: 502, Body: "bad gateway"}
	if e.Error() != "API error 502: bad gateway" {
		t.Errorf("Error() = %q", e.Error())
	}
}
