package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMissingCredential is a configuration error: the provider needs a key and none was given.
	ErrMissingCredential = errors.New("llm: provider credential is not configured")

	// ErrUnknownProvider is returned by the registry when no adapter is registered for a provider.
	ErrUnknownProvider = errors.New("llm: provider not registered")

	// ErrUnsupportedCapability is returned when no registered provider can serve a capability.
	ErrUnsupportedCapability = errors.New("llm: capability not supported")

	// ErrAuthorization matches any ProviderError caused by a rejected credential.
	ErrAuthorization = errors.New("llm: authorization failed")

	// ErrNetwork wraps transport failures (DNS, refused connections, timeouts).
	ErrNetwork = errors.New("llm: network error")

	// ErrEmptyResponse is returned when the upstream answered 2xx without any content.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// invalidKeyMarkers are body fragments providers use to reject a key without a 401.
// Gemini answers 400 INVALID_ARGUMENT with "API key not valid".
var invalidKeyMarkers = []string{
	"api key not valid",
	"api_key_invalid",
	"invalid_api_key",
	"invalid api key",
	"incorrect api key",
}

// ProviderError is a non-2xx response from an upstream API.
type ProviderError struct {
	Provider   ProviderID
	Operation  string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Operation, e.Message)
}

// Is lets errors.Is(err, ErrAuthorization) match authorization-class provider errors.
func (e *ProviderError) Is(target error) bool {
	return target == ErrAuthorization && e.IsAuthorization()
}

// IsAuthorization reports whether the upstream rejected the credential or model access.
func (e *ProviderError) IsAuthorization() bool {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return true
	}
	msg := strings.ToLower(e.Message)
	for _, marker := range invalidKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsAuthorizationError reports whether err is an authorization-class failure.
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrAuthorization)
}

// IsConfigurationError reports whether err was raised before any network call because of setup.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrUnknownProvider)
}

func networkError(provider ProviderID, op string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", provider, op, ErrNetwork, err)
}
